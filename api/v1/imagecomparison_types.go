package v1

import (
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ImageComparisonSpec defines the desired state of ImageComparison
type ImageComparisonSpec struct {
	// Baseline is the URL or storage location of the expected image
	Baseline string `json:"baseline"`
	// Target is the URL or storage location of the actual image
	Target string `json:"target"`
	// +kubebuilder:validation:Optional
	Options ComparisonOptions `json:"options,omitempty"`
}

// ImageComparisonStatus defines the observed state of ImageComparison
type ImageComparisonStatus struct {
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
	// BaselineURL is the storage URL where the compared baseline is stored
	BaselineURL string `json:"baselineUrl,omitempty"`
	// TargetURL is the storage URL where the compared target is stored
	TargetURL        string `json:"targetUrl,omitempty"`
	ComparisonResult `json:",inline"`
	// LastComparisonTime is the time when the images were last compared
	LastComparisonTime *metaV1.Time `json:"lastComparisonTime,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="HasDiff",type=boolean,JSONPath=`.status.hasDiff`
// +kubebuilder:printcolumn:name="DiffSize",type=integer,JSONPath=`.status.diffSize`

// ImageComparison is the schema for the imagecomparisons API
type ImageComparison struct {
	metaV1.TypeMeta   `json:",inline"`
	metaV1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ImageComparisonSpec   `json:"spec,omitempty"`
	Status ImageComparisonStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ImageComparisonList contains a list of ImageComparison
type ImageComparisonList struct {
	metaV1.TypeMeta `json:",inline"`
	metaV1.ListMeta `json:"metadata,omitempty"`
	Items           []ImageComparison `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ImageComparison{}, &ImageComparisonList{})
}
