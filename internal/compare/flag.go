package compare

import (
	"strings"

	diffimage "image-diff-controller/internal/diff/image"
)

// AreasFlag is a repeatable flag.Value collecting region notations.
type AreasFlag []string

func (f *AreasFlag) String() string {
	return strings.Join(*f, ";")
}

func (f *AreasFlag) Set(value string) error {
	if _, err := diffimage.ParseRegion(value); err != nil {
		return err
	}
	*f = append(*f, value)
	return nil
}
