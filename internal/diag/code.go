package diag

// Code is a short diagnostic identifier such as "E0277". Codes are
// opaque to this toolkit: they are assigned by whatever produced the
// diagnostic, and never interpreted here. The zero value means the
// diagnostic carries no code and the [code] segment of the header is
// omitted.
type Code string

const NoCode Code = ""

func (c Code) String() string {
	return string(c)
}

func (c Code) IsZero() bool {
	return c == NoCode
}
