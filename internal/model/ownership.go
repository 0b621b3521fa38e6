package model

// Ownership описывает вариант секрета (Shared или Personal{UserID}).
// Реализации только в этом пакете, переключаться по ним через type switch.
type Ownership interface {
	Type() SecretType
	Owner() string
	isOwnership()
}

// Shared: общий секрет команды.
type Shared struct{}

func (Shared) Type() SecretType { return SecretTypeShared }
func (Shared) Owner() string    { return "" }
func (Shared) isOwnership()     {}

// Personal: переопределение общего секрета для одного пользователя.
type Personal struct {
	UserID string
}

func (Personal) Type() SecretType { return SecretTypePersonal }
func (p Personal) Owner() string  { return p.UserID }
func (Personal) isOwnership()     {}

// OwnershipFor строит вариант по типу и актору.
func OwnershipFor(t SecretType, actor Actor) Ownership {
	if t == SecretTypePersonal {
		return Personal{UserID: actor.UserID}
	}
	return Shared{}
}
