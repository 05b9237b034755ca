package v1

// ComparisonScope restricts the comparison on one side. Areas are written as
// "x,y,width,height" or "x,y".
type ComparisonScope struct {
	// IgnoredAreas are excluded from the comparison
	IgnoredAreas []string `json:"ignoredAreas,omitempty"`
	// CoordsToCompare limits the comparison to these areas when not empty
	CoordsToCompare []string `json:"coordsToCompare,omitempty"`
}

// ComparisonOptions configures how two images are compared and rendered
type ComparisonOptions struct {
	// Format specifies how differences are marked ("pixel" or "rectangle")
	// +kubebuilder:validation:Enum=pixel;rectangle
	// +kubebuilder:default="rectangle"
	Format string `json:"format,omitempty"`
	// ColorDistortion is the largest per-channel difference still treated as equal
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=255
	ColorDistortion int `json:"colorDistortion,omitempty"`
	// DiffColor is the markup color as "#rrggbb" or a CSS color name
	DiffColor string `json:"diffColor,omitempty"`
	// DiffSizeTrigger is the number of differing pixels needed to report a difference
	// +kubebuilder:validation:Minimum=0
	DiffSizeTrigger int `json:"diffSizeTrigger,omitempty"`
	// MergeDistance joins rectangle clusters closer than this many pixels
	// +kubebuilder:validation:Minimum=0
	MergeDistance int `json:"mergeDistance,omitempty"`
	// Raw stores the composited image without markup
	Raw bool `json:"raw,omitempty"`
	// Expected scopes the baseline image
	Expected ComparisonScope `json:"expected,omitempty"`
	// Actual scopes the target image
	Actual ComparisonScope `json:"actual,omitempty"`
}

// ComparisonResult is the outcome of the latest comparison
type ComparisonResult struct {
	// DiffURL is the storage URL where the diff image is stored
	DiffURL string `json:"diffUrl,omitempty"`
	// DiffAmount is the share of differing pixels (0.0 to 1.0)
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=1
	DiffAmount float64 `json:"diffAmount,omitempty"`
	// DiffSize is the number of differing pixels
	DiffSize int `json:"diffSize,omitempty"`
	// HasDiff reports whether DiffSize reached the trigger
	HasDiff bool `json:"hasDiff,omitempty"`
	// Fingerprint identifies the set of differing pixels
	Fingerprint string `json:"fingerprint,omitempty"`
	// Rectangles are the marked clusters as "x,y,width,height"
	Rectangles []string `json:"rectangles,omitempty"`
}
