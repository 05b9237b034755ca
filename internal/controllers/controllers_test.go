package controllers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	batchV1 "k8s.io/api/batch/v1"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	idV1 "image-diff-controller/api/v1"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := idV1.AddToScheme(scheme); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return scheme
}

func writeImage(t *testing.T, path string, dirty ...image.Point) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}
	for _, p := range dirty {
		img.Set(p.X, p.Y, color.Black)
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func newStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewFileStorage(context.Background(), storage.FileConfig{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return s
}

func drain(recorder *record.FakeRecorder) []string {
	var events []string
	for {
		select {
		case e := <-recorder.Events:
			events = append(events, strings.Fields(e)[1])
		default:
			return events
		}
	}
}

func TestImageComparisonReconciler(t *testing.T) {
	dir := t.TempDir()
	baseline := filepath.Join(dir, "baseline.png")
	target := filepath.Join(dir, "target.png")
	writeImage(t, baseline)
	writeImage(t, target, image.Pt(2, 3), image.Pt(3, 3))

	newComparison := func(options idV1.ComparisonOptions) *idV1.ImageComparison {
		return &idV1.ImageComparison{
			ObjectMeta: metaV1.ObjectMeta{Name: "home", Namespace: "default", Generation: 1},
			Spec:       idV1.ImageComparisonSpec{Baseline: baseline, Target: target, Options: options},
		}
	}
	request := ctrl.Request{NamespacedName: types.NamespacedName{Name: "home", Namespace: "default"}}

	t.Run("Local", func(t *testing.T) {
		comparison := newComparison(idV1.ComparisonOptions{})
		scheme := newScheme(t)
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(comparison).WithStatusSubresource(comparison).Build()
		recorder := record.NewFakeRecorder(10)
		s := newStorage(t)
		r := &ImageComparisonReconciler{
			Client:   c,
			Log:      logr.Discard(),
			Scheme:   scheme,
			Recorder: recorder,
			Loader:   &source.Loader{Storage: s},
			Storage:  s,
		}

		if _, err := r.Reconcile(context.Background(), request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		got := &idV1.ImageComparison{}
		if err := c.Get(context.Background(), request.NamespacedName, got); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"2,3,2,1"}, got.Status.Rectangles); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if !got.Status.HasDiff || got.Status.DiffSize != 2 || got.Status.ObservedGeneration != 1 {
			t.Errorf("Unexpected status: %+v", got.Status)
		}
		for _, url := range []string{got.Status.BaselineURL, got.Status.TargetURL, got.Status.DiffURL} {
			if _, err := s.Get(context.Background(), url); err != nil {
				t.Errorf("Expected %q to be stored: %v", url, err)
			}
		}
		if diff := cmp.Diff([]string{"DifferenceDetected"}, drain(recorder)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}

		// The generation was observed, so nothing happens again.
		if _, err := r.Reconcile(context.Background(), request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if events := drain(recorder); len(events) != 0 {
			t.Errorf("Expected no events, got %v", events)
		}
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		comparison := newComparison(idV1.ComparisonOptions{Format: "circle"})
		scheme := newScheme(t)
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(comparison).WithStatusSubresource(comparison).Build()
		recorder := record.NewFakeRecorder(10)
		s := newStorage(t)
		r := &ImageComparisonReconciler{
			Client:   c,
			Log:      logr.Discard(),
			Scheme:   scheme,
			Recorder: recorder,
			Loader:   &source.Loader{Storage: s},
			Storage:  s,
		}

		if _, err := r.Reconcile(context.Background(), request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"InvalidOptions"}, drain(recorder)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Distributed", func(t *testing.T) {
		comparison := newComparison(idV1.ComparisonOptions{Format: "pixel"})
		scheme := newScheme(t)
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(comparison).WithStatusSubresource(comparison).Build()
		recorder := record.NewFakeRecorder(10)
		r := &ImageComparisonReconciler{
			Client:                  c,
			Log:                     logr.Discard(),
			Scheme:                  scheme,
			Recorder:                recorder,
			Distributed:             true,
			DistributedCallbackHost: "controller:8082",
			DistributedWorkerImage:  "worker:latest",
		}

		if _, err := r.Reconcile(context.Background(), request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		job := &batchV1.Job{}
		if err := c.Get(context.Background(), client.ObjectKey{Name: "imagecomparison-home-1", Namespace: "default"}, job); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		args := job.Spec.Template.Spec.Containers[0].Args
		want := []string{
			"--options", `{"format":"pixel","expected":{},"actual":{}}`,
			"--callback", "http://controller:8082/api/default/imagediff.dev/v1/imagecomparison/home/artifacts",
			baseline, target,
		}
		if diff := cmp.Diff(want, args); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"JobCreated"}, drain(recorder)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestScheduledImageComparisonReconciler(t *testing.T) {
	request := ctrl.Request{NamespacedName: types.NamespacedName{Name: "home", Namespace: "default"}}

	t.Run("Local", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "target.png")
		writeImage(t, target)

		scheduled := &idV1.ScheduledImageComparison{
			ObjectMeta: metaV1.ObjectMeta{Name: "home", Namespace: "default"},
			Spec:       idV1.ScheduledImageComparisonSpec{Schedule: "* * * * *", Target: target},
		}
		scheme := newScheme(t)
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(scheduled).WithStatusSubresource(scheduled).Build()
		recorder := record.NewFakeRecorder(10)
		s := newStorage(t)
		r := &ScheduledImageComparisonReconciler{
			Client:   c,
			Log:      logr.Discard(),
			Scheme:   scheme,
			Recorder: recorder,
			Loader:   &source.Loader{Storage: s},
			Storage:  s,
		}
		ctx := context.Background()

		// The first run has nothing to compare with.
		result, err := r.Reconcile(ctx, request)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.RequeueAfter <= 0 || result.RequeueAfter > time.Minute {
			t.Errorf("Expected a requeue within the schedule, got %v", result.RequeueAfter)
		}
		first := &idV1.ScheduledImageComparison{}
		if err := c.Get(ctx, request.NamespacedName, first); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if first.Status.TargetURL == "" || first.Status.BaselineURL != "" || first.Status.HasDiff {
			t.Errorf("Unexpected status: %+v", first.Status)
		}

		// Not due yet.
		if _, err := r.Reconcile(ctx, request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if events := drain(recorder); len(events) != 1 {
			t.Errorf("Expected a single run, got %v", events)
		}

		writeImage(t, target, image.Pt(7, 7))
		first.Status.LastComparisonTime = &metaV1.Time{Time: time.Now().Add(-time.Hour)}
		if err := c.Status().Update(ctx, first); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if _, err := r.Reconcile(ctx, request); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		second := &idV1.ScheduledImageComparison{}
		if err := c.Get(ctx, request.NamespacedName, second); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(first.Status.TargetURL, second.Status.BaselineURL); diff != "" {
			t.Errorf("Expected the previous target to become the baseline (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"7,7,1,1"}, second.Status.Rectangles); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"DifferenceDetected"}, drain(recorder)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Distributed", func(t *testing.T) {
		scheduled := &idV1.ScheduledImageComparison{
			ObjectMeta: metaV1.ObjectMeta{Name: "home", Namespace: "default"},
			Spec:       idV1.ScheduledImageComparisonSpec{Schedule: "0 * * * *", Target: "https://example.com/home.png"},
		}
		scheme := newScheme(t)
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(scheduled).WithStatusSubresource(scheduled).Build()
		recorder := record.NewFakeRecorder(10)
		r := &ScheduledImageComparisonReconciler{
			Client:                  c,
			Log:                     logr.Discard(),
			Scheme:                  scheme,
			Recorder:                recorder,
			Distributed:             true,
			DistributedCallbackHost: "controller:8082",
			DistributedWorkerImage:  "worker:latest",
		}
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			if _, err := r.Reconcile(ctx, request); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		}

		cronJob := &batchV1.CronJob{}
		if err := c.Get(ctx, client.ObjectKey{Name: "imagecomparison-home", Namespace: "default"}, cronJob); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff("0 * * * *", cronJob.Spec.Schedule); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		args := cronJob.Spec.JobTemplate.Spec.Template.Spec.Containers[0].Args
		if !slices.Contains(args, "http://controller:8082/api/default/imagediff.dev/v1/scheduledimagecomparison/home") {
			t.Errorf("Expected the resource URL in %v", args)
		}
		if diff := cmp.Diff([]string{"CronJobCreated", "CronJobUpdated"}, drain(recorder)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}
