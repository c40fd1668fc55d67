package models

// TierPolicy отображение типа абонемента на множество недоступных комнат.
// Внедряется в BookingService, в тестах подменяется.
type TierPolicy map[string]map[string]bool

// Blocked сообщает, закрыта ли комната roomName для типа абонемента tier.
// Неизвестный тип абонемента не ограничен.
func (p TierPolicy) Blocked(tier, roomName string) bool {
	blocked, ok := p[tier]
	if !ok {
		return false
	}
	return blocked[roomName]
}

// NewTierPolicy строит TierPolicy из конфигурационного отображения
// тип -> список имен комнат.
func NewTierPolicy(raw map[string][]string) TierPolicy {
	policy := make(TierPolicy, len(raw))
	for tier, rooms := range raw {
		set := make(map[string]bool, len(rooms))
		for _, name := range rooms {
			set[name] = true
		}
		policy[tier] = set
	}
	return policy
}

// DefaultTierPolicy ограничения по умолчанию: standard закрыт доступ в
// сауны и специальные комнаты, platinum — в ледяную и ароматерапию,
// diamond без ограничений.
func DefaultTierPolicy() TierPolicy {
	return NewTierPolicy(map[string][]string{
		MembershipStandard: {
			RoomAromatherapyRoom,
			RoomDefaultSauna,
			RoomIceRoom,
			RoomSteamSauna,
		},
		MembershipPlatinum: {
			RoomIceRoom,
			RoomAromatherapyRoom,
		},
	})
}
