package sync

import (
	"encoding/json"
	"errors"

	"cloudsync/core/logger"
	"cloudsync/core/mapper"
	"cloudsync/core/scheduler"
	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync jobs and mapping previews.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/jobs", h.HandleListJobs)
	group.Post("/:resource/:cloud", h.HandleTrigger)

	app.Post("/mapper/:cloudType/:resource", h.HandlePreview)
}

// HandleListJobs returns every scheduled job with its last report.
// @Summary List Sync Jobs
// @Description Lists every scheduled sync job with its interval, run state and last report.
// @Tags sync
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Jobs"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /sync/jobs [get]
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"jobs": h.service.Jobs()})
}

// HandleTrigger starts a job outside its schedule. With ?dry_run=true the
// cycle runs synchronously without writing and its plan is returned.
// @Summary Trigger Sync Job
// @Description Starts the sync job of a resource type (or Stack) on one cloud outside its schedule. With dry_run the cycle runs synchronously, writes nothing and returns its plan.
// @Tags sync
// @Produce json
// @Security ApiKeyAuth
// @Param resource path string true "Resource type or Stack"
// @Param cloud path string true "Cloud name"
// @Param dry_run query boolean false "Compute the plan without writing"
// @Success 200 {object} map[string]interface{} "Dry run result"
// @Success 202 {object} map[string]string "Job started"
// @Failure 404 {object} map[string]string "Unknown job, resource type or cloud"
// @Failure 409 {object} map[string]string "Job already running"
// @Failure 503 {object} map[string]string "Scheduler stopped"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/{resource}/{cloud} [post]
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	resource := c.Params("resource")
	cloudName := c.Params("cloud")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("resource", resource), zap.String("cloud", cloudName))

	if c.QueryBool("dry_run") {
		return h.dryRun(c, l, resource, cloudName)
	}

	job, err := h.service.Trigger(c.UserContext(), resource, cloudName)
	switch {
	case err == nil:
		l.Info("Sync job triggered", zap.String("job", job))
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job": job, "status": "started"})
	case errors.Is(err, scheduler.ErrJobRunning):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"job": job, "error": err.Error()})
	case errors.Is(err, scheduler.ErrStopped):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scheduler.ErrUnknownJob), errors.Is(err, ErrUnknownResource):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Failed to trigger sync job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (h *Handler) dryRun(c *fiber.Ctx, l *zap.Logger, resource, cloudName string) error {
	ctx := c.UserContext()
	var (
		result any
		err    error
	)
	if _, jerr := h.service.jobName(resource, cloudName); jerr != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": jerr.Error()})
	}
	if rt, perr := schema.ParseResourceType(resource); perr == nil {
		result, err = h.service.SyncOne(ctx, rt, cloudName, true)
	} else {
		result, err = h.service.SyncStacks(ctx, cloudName, true)
	}
	if err != nil {
		l.Error("Dry run failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, cloud.ErrUnknownCloud) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// HandlePreview translates the JSON body as a payload of the given cloud type
// and resource type and returns the canonical document.
// @Summary Preview Mapping
// @Description Translates a provider payload with the field map and returns the canonical document without storing it.
// @Tags mapper
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param cloudType path string true "Cloud type (openstack, aws, gcp)"
// @Param resource path string true "Resource type"
// @Param cloud query string false "Cloud name stored in the document"
// @Param payload body map[string]interface{} true "Provider payload"
// @Success 200 {object} map[string]interface{} "Canonical document"
// @Failure 400 {object} map[string]string "Body is not a JSON object"
// @Failure 404 {object} map[string]string "No field map for the pair"
// @Failure 422 {object} map[string]string "Payload failed to translate"
// @Router /mapper/{cloudType}/{resource} [post]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must be a JSON object"})
	}

	doc, err := h.service.Preview(c.UserContext(), c.Params("cloudType"), c.Params("resource"), c.Query("cloud"), payload)
	if err != nil {
		l.Warn("Mapping preview failed", zap.Error(err))
		status := fiber.StatusUnprocessableEntity
		if mapper.IsConfigurationError(err) || mapper.IsUnsupportedResourceType(err) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(doc)
}
