package portal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// JobsController exposes posting CRUD for recruiters and administrators.
type JobsController struct {
	Repo   RepositoryManager
	Logger Logger
}

// JobPayload is the posting create/update body. Deadline is RFC 3339.
type JobPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Location    string `form:"location" json:"location"`
	SalaryRange string `form:"salary_range" json:"salary_range"`
	Deadline    string `form:"deadline" json:"deadline"`
	Status      string `form:"status" json:"status"`
}

// Validate will run validation rules
func (r JobPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Deadline, validation.Date(time.RFC3339)),
		validation.Field(&r.Status, validation.In("", string(JobStatusOpen), string(JobStatusClosed))),
	)
}

func (r JobPayload) deadline() *time.Time {
	if r.Deadline == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, r.Deadline)
	if err != nil {
		return nil
	}
	return &t
}

// Create handles POST /api/jobs.
func (a *JobsController) Create(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleRecruiter, RoleAdmin); err != nil {
		return err
	}

	payload := new(JobPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("job create parse payload", "error", err)
		return badPayload(err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(err)
	}

	record := &Job{
		Title:        payload.Title,
		Description:  payload.Description,
		Location:     payload.Location,
		SalaryRange:  payload.SalaryRange,
		Deadline:     payload.deadline(),
		Status:       JobStatusOpen,
		PostedByID:   uuidOrNil(rp.ID()),
		PostedByKind: rp.Role(),
	}

	created, err := a.Repo.Jobs().Post(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create job")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"job": created})
}

// Show handles GET /api/jobs/:id. Single postings are publicly readable.
func (a *JobsController) Show(c *fiber.Ctx) error {
	job, err := a.loadJob(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"job": job})
}

// Update handles PUT /api/jobs/:id. Non-administrators must own the posting.
func (a *JobsController) Update(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleRecruiter, RoleAdmin); err != nil {
		return err
	}

	job, err := a.loadJob(c)
	if err != nil {
		return err
	}

	if err := RequireOwnership(rp, job.PostedByID.String(), job.PostedByKind); err != nil {
		return err
	}

	payload := new(JobPayload)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(err)
	}

	setIfPresent(&job.Title, payload.Title)
	setIfPresent(&job.Description, payload.Description)
	setIfPresent(&job.Location, payload.Location)
	setIfPresent(&job.SalaryRange, payload.SalaryRange)
	if d := payload.deadline(); d != nil {
		job.Deadline = d
	}
	if payload.Status != "" {
		job.Status = JobStatus(payload.Status)
	}

	updated, err := a.Repo.Jobs().Update(c.UserContext(), job)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update job")
	}

	return c.JSON(fiber.Map{"job": updated})
}

// Delete handles DELETE /api/jobs/:id.
func (a *JobsController) Delete(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleRecruiter, RoleAdmin); err != nil {
		return err
	}

	job, err := a.loadJob(c)
	if err != nil {
		return err
	}

	if err := RequireOwnership(rp, job.PostedByID.String(), job.PostedByKind); err != nil {
		return err
	}

	if err := a.Repo.Jobs().DeleteByID(c.UserContext(), job.JobID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete job")
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (a *JobsController) loadJob(c *fiber.Ctx) (*Job, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ErrJobNotFound
	}

	job, err := a.Repo.Jobs().GetByID(c.UserContext(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "job lookup failed")
	}

	return job, nil
}
