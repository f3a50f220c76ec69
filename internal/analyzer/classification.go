package analyzer

// Class defines the classification of one ROM address.
type Class uint8

// Classification flags. Addresses never reached by any traced control path
// stay Unknown: the analyzer can prove reachability but not its absence, so
// it never claims Data with certainty. Data exists for hosts that decide to
// treat unreached regions as data.
const (
	Unknown Class = 0
	Code    Class = 1 << iota
	Data
	CallTarget // address is the destination of a call, indicating a subroutine
	JumpTarget // address is the destination of a jump
)

// IsType returns whether the class contains the given flags.
func (c Class) IsType(class Class) bool {
	return c&class != 0
}

// setType adds the given flags to the class.
func (c *Class) setType(class Class) {
	*c |= class
}
