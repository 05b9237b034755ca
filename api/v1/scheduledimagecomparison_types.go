package v1

import (
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ScheduledImageComparisonSpec defines the desired state of ScheduledImageComparison
type ScheduledImageComparisonSpec struct {
	// Schedule in Cron format, see https://en.wikipedia.org/wiki/Cron.
	Schedule string `json:"schedule"`
	// Target is the URL of the image to fetch on every run
	Target string `json:"target"`
	// +kubebuilder:validation:Optional
	Options ComparisonOptions `json:"options,omitempty"`
}

// ScheduledImageComparisonStatus defines the observed state of ScheduledImageComparison.
// Every run compares the new target with the previous one, which becomes the baseline.
type ScheduledImageComparisonStatus struct {
	// BaselineURL is the storage URL of the previous target
	BaselineURL string `json:"baselineUrl,omitempty"`
	// TargetURL is the storage URL of the latest target
	TargetURL        string `json:"targetUrl,omitempty"`
	ComparisonResult `json:",inline"`
	// LastComparisonTime is the time of the latest run
	LastComparisonTime *metaV1.Time `json:"lastComparisonTime,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// ScheduledImageComparison is the schema for the scheduledimagecomparisons API
type ScheduledImageComparison struct {
	metaV1.TypeMeta   `json:",inline"`
	metaV1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ScheduledImageComparisonSpec   `json:"spec,omitempty"`
	Status ScheduledImageComparisonStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ScheduledImageComparisonList contains a list of ScheduledImageComparison
type ScheduledImageComparisonList struct {
	metaV1.TypeMeta `json:",inline"`
	metaV1.ListMeta `json:"metadata,omitempty"`
	Items           []ScheduledImageComparison `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ScheduledImageComparison{}, &ScheduledImageComparisonList{})
}
