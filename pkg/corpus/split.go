package corpus

// Split identifies one portion of a dataset.
type Split string

// Split constants, in canonical order.
const (
	SplitTrain Split = "train"
	SplitDev   Split = "dev"
	SplitTest  Split = "test"
)

// Splits returns all splits in canonical order: train, dev, test.
func Splits() []Split {
	return []Split{SplitTrain, SplitDev, SplitTest}
}

// ParseSplit validates a split name and returns the typed value.
// Unknown names return an InvalidSplitError.
func ParseSplit(name string) (Split, error) {
	switch Split(name) {
	case SplitTrain, SplitDev, SplitTest:
		return Split(name), nil
	}
	return "", &InvalidSplitError{Split: name}
}
