package controllers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/xerrors"
	batchV1 "k8s.io/api/batch/v1"
	coreV1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	idV1 "image-diff-controller/api/v1"
	"image-diff-controller/internal/compare"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

type ImageComparisonReconciler struct {
	client.Client
	Log      logr.Logger
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Loader   *source.Loader
	Storage  storage.Storage

	Distributed             bool
	DistributedCallbackHost string
	DistributedWorkerImage  string
	// DistributedWorkerEnv is passed to worker containers, typically the
	// storage settings and credentials.
	DistributedWorkerEnv []coreV1.EnvVar
}

func (r *ImageComparisonReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	comparison := &idV1.ImageComparison{}
	if err := r.Get(ctx, req.NamespacedName, comparison); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if comparison.Status.ObservedGeneration >= comparison.Generation {
		return ctrl.Result{}, nil
	}

	comparison.Status.ObservedGeneration = comparison.Generation
	if err := r.Status().Update(ctx, comparison); err != nil {
		return ctrl.Result{}, err
	}

	if r.Distributed {
		if err := r.createJob(ctx, comparison); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	if err := r.processComparison(ctx, comparison); err != nil {
		if recordInvalid(r.Recorder, comparison, err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

func (r *ImageComparisonReconciler) processComparison(ctx context.Context, comparison *idV1.ImageComparison) error {
	pair, err := r.Loader.LoadPair(ctx, comparison.Spec.Baseline, comparison.Spec.Target)
	if err != nil {
		return err
	}

	result, err := compare.Run(pair.Baseline, pair.Target, compareOptions(comparison.Spec.Options))
	if err != nil {
		return xerrors.Errorf("failed to generate diff: %w", err)
	}

	var baselineURL string
	var targetURL string
	var diffURL string

	u := newUploads(ctx, r.Storage, "ImageComparison")
	u.put("capture", pair.BaselineData, &baselineURL, comparison.Spec.Baseline)
	u.put("capture", pair.TargetData, &targetURL, comparison.Spec.Target)
	u.put("diff", result.Image, &diffURL, comparison.Spec.Baseline, comparison.Spec.Target)
	if err := u.wait(); err != nil {
		return err
	}

	now := metaV1.Now()
	comparison.Status.BaselineURL = baselineURL
	comparison.Status.TargetURL = targetURL
	comparison.Status.ComparisonResult = comparisonResult(diffURL, result)
	comparison.Status.LastComparisonTime = &now

	if err := r.Status().Update(ctx, comparison); err != nil {
		return xerrors.Errorf("failed to update image comparison status: %w", err)
	}
	recordResult(r.Recorder, comparison, comparison.Name, comparison.Status.ComparisonResult)

	return nil
}

func (r *ImageComparisonReconciler) createJob(ctx context.Context, comparison *idV1.ImageComparison) error {
	jobName := fmt.Sprintf("imagecomparison-%s-%d", comparison.Name, comparison.Generation)

	args, err := workerArgs(comparison.Spec.Options, callbackURL(r.DistributedCallbackHost, comparison.Namespace, "imagecomparison", comparison.Name)+"/artifacts")
	if err != nil {
		return err
	}
	args = append(args, comparison.Spec.Baseline, comparison.Spec.Target)

	job := &batchV1.Job{
		ObjectMeta: metaV1.ObjectMeta{
			Name:      jobName,
			Namespace: comparison.Namespace,
		},
		Spec: batchV1.JobSpec{
			Template: coreV1.PodTemplateSpec{
				Spec: coreV1.PodSpec{
					RestartPolicy: coreV1.RestartPolicyNever,
					Containers: []coreV1.Container{
						{
							Name:  "worker",
							Image: r.DistributedWorkerImage,
							Args:  args,
							Env:   r.DistributedWorkerEnv,
						},
					},
				},
			},
		},
	}

	if err := controllerutil.SetControllerReference(comparison, job, r.Scheme); err != nil {
		return xerrors.Errorf("failed to set controller reference: %w", err)
	}

	if err := r.Create(ctx, job); err != nil {
		if apierrors.IsAlreadyExists(err) {
			r.Log.Info("Job already exists", "job", jobName)
			return nil
		}
		return xerrors.Errorf("failed to create job: %w", err)
	}

	r.Recorder.Eventf(comparison, coreV1.EventTypeNormal, "JobCreated", "Created job %s for image comparison", jobName)
	return nil
}

func (r *ImageComparisonReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&idV1.ImageComparison{}).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		Complete(r)
}
