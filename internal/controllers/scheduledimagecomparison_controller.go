package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"
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

type ScheduledImageComparisonReconciler struct {
	client.Client
	Log      logr.Logger
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Loader   *source.Loader
	Storage  storage.Storage

	Distributed             bool
	DistributedCallbackHost string
	DistributedWorkerImage  string
	DistributedWorkerEnv    []coreV1.EnvVar
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func (r *ScheduledImageComparisonReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	scheduled := &idV1.ScheduledImageComparison{}
	if err := r.Get(ctx, req.NamespacedName, scheduled); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if r.Distributed {
		if err := r.createOrUpdateCronJob(ctx, scheduled); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	schedule, err := cronParser.Parse(scheduled.Spec.Schedule)
	if err != nil {
		r.Recorder.Eventf(scheduled, coreV1.EventTypeWarning, "InvalidSchedule", "Schedule %q is invalid: %s", scheduled.Spec.Schedule, err)
		return ctrl.Result{}, nil
	}

	nextRun := schedule.Next(time.Now().Add(-1 * time.Minute))
	if scheduled.Status.LastComparisonTime != nil {
		nextRun = schedule.Next(scheduled.Status.LastComparisonTime.Time)
	}
	now := time.Now()

	if now.Before(nextRun) {
		return ctrl.Result{RequeueAfter: nextRun.Sub(now)}, nil
	}

	if err := r.processComparison(ctx, scheduled); err != nil {
		if !recordInvalid(r.Recorder, scheduled, err) {
			return ctrl.Result{}, err
		}
	}

	nextRun = schedule.Next(now)
	return ctrl.Result{RequeueAfter: nextRun.Sub(now)}, nil
}

// processComparison fetches the target and compares it with the previous
// run's target, which then becomes the baseline.
func (r *ScheduledImageComparisonReconciler) processComparison(ctx context.Context, scheduled *idV1.ScheduledImageComparison) error {
	target, targetData, err := r.Loader.Load(ctx, scheduled.Spec.Target)
	if err != nil {
		return xerrors.Errorf("failed to load target: %w", err)
	}

	var result *compare.Result
	previousURL := scheduled.Status.TargetURL
	if previousURL != "" {
		baseline, _, err := r.Loader.Load(ctx, previousURL)
		if err != nil {
			return xerrors.Errorf("failed to load baseline: %w", err)
		}
		result, err = compare.Run(baseline, target, compareOptions(scheduled.Spec.Options))
		if err != nil {
			return xerrors.Errorf("failed to generate diff: %w", err)
		}
	}

	var targetURL string
	var diffURL string

	u := newUploads(ctx, r.Storage, "ScheduledImageComparison")
	u.put("capture", targetData, &targetURL, scheduled.Spec.Target, string(targetData))
	if result != nil {
		u.put("diff", result.Image, &diffURL, previousURL, scheduled.Spec.Target)
	}
	if err := u.wait(); err != nil {
		return err
	}

	now := metaV1.Now()
	scheduled.Status.BaselineURL = previousURL
	scheduled.Status.TargetURL = targetURL
	scheduled.Status.ComparisonResult = idV1.ComparisonResult{}
	if result != nil {
		scheduled.Status.ComparisonResult = comparisonResult(diffURL, result)
	}
	scheduled.Status.LastComparisonTime = &now

	if err := r.Status().Update(ctx, scheduled); err != nil {
		return xerrors.Errorf("failed to update scheduled image comparison status: %w", err)
	}
	recordResult(r.Recorder, scheduled, scheduled.Name, scheduled.Status.ComparisonResult)

	return nil
}

func (r *ScheduledImageComparisonReconciler) createOrUpdateCronJob(ctx context.Context, scheduled *idV1.ScheduledImageComparison) error {
	cronJobName := fmt.Sprintf("imagecomparison-%s", scheduled.Name)

	resourceURL := callbackURL(r.DistributedCallbackHost, scheduled.Namespace, "scheduledimagecomparison", scheduled.Name)
	args, err := workerArgs(scheduled.Spec.Options, resourceURL+"/artifacts")
	if err != nil {
		return err
	}
	args = append(args, "--previous-from", resourceURL, scheduled.Spec.Target)

	cronJob := &batchV1.CronJob{
		ObjectMeta: metaV1.ObjectMeta{
			Name:      cronJobName,
			Namespace: scheduled.Namespace,
		},
		Spec: batchV1.CronJobSpec{
			Schedule:          scheduled.Spec.Schedule,
			ConcurrencyPolicy: batchV1.ForbidConcurrent,
			JobTemplate: batchV1.JobTemplateSpec{
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
			},
		},
	}

	if err := controllerutil.SetControllerReference(scheduled, cronJob, r.Scheme); err != nil {
		return xerrors.Errorf("failed to set controller reference: %w", err)
	}

	existingCronJob := &batchV1.CronJob{}
	err = r.Get(ctx, client.ObjectKey{Name: cronJobName, Namespace: scheduled.Namespace}, existingCronJob)
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return xerrors.Errorf("failed to get existing cronjob: %w", err)
		}
		if err := r.Create(ctx, cronJob); err != nil {
			return xerrors.Errorf("failed to create cronjob: %w", err)
		}
		r.Recorder.Eventf(scheduled, coreV1.EventTypeNormal, "CronJobCreated", "Created CronJob %s", cronJobName)
		return nil
	}

	existingCronJob.Spec = cronJob.Spec
	if err := r.Update(ctx, existingCronJob); err != nil {
		return xerrors.Errorf("failed to update cronjob: %w", err)
	}
	r.Recorder.Eventf(scheduled, coreV1.EventTypeNormal, "CronJobUpdated", "Updated CronJob %s", cronJobName)

	return nil
}

func (r *ScheduledImageComparisonReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&idV1.ScheduledImageComparison{}).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		Complete(r)
}
