package types

type ItemFragment interface {
	ForEachField(callback func(name string, value any)) error
	MarshalJSON() ([]byte, error)
}

type Item interface {
	ItemFragment

	Value(name string) (any, bool)
	SetValue(name string, value any)
	Remove(name string)
	Clone() Item
}
