package portal

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/hiredesk/portal/storage"
)

// ApplicationsController exposes submissions and decisions.
type ApplicationsController struct {
	Repo        RepositoryManager
	Lifecycle   *ApplicationLifecycle
	Resumes     storage.ResumeStore
	Logger      Logger
	PhoneRegion string
}

// ApplyPayload is the multipart application form minus the resume file.
type ApplyPayload struct {
	FullName        string `form:"full_name" json:"full_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	LinkedinProfile string `form:"linkedin_profile" json:"linkedin_profile"`
	PortfolioURL    string `form:"portfolio_url" json:"portfolio_url"`
	NoticePeriod    string `form:"notice_period" json:"notice_period"`
	CurrentSalary   string `form:"current_salary" json:"current_salary"`
	ExpectedSalary  string `form:"expected_salary" json:"expected_salary"`
	CoverLetter     string `form:"cover_letter" json:"cover_letter"`
}

// Validate will run validation rules
func (r ApplyPayload) Validate(phoneRegion string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber(phoneRegion))),
		validation.Field(&r.LinkedinProfile, is.URL),
		validation.Field(&r.PortfolioURL, is.URL),
	)
}

// StatusPayload carries a decision.
type StatusPayload struct {
	Status string `form:"status" json:"status"`
}

// Apply handles POST /api/jobs/:id/apply.
func (a *ApplicationsController) Apply(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleJobSeeker); err != nil {
		return err
	}

	payload := new(ApplyPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("apply parse payload", "error", err)
		return badPayload(err)
	}

	if err := payload.Validate(a.PhoneRegion); err != nil {
		return validationFailed(err)
	}

	resumeRef, err := a.storeResume(c, rp)
	if err != nil {
		return err
	}

	created, err := a.Lifecycle.Submit(c.UserContext(), rp, SubmitApplicationMessage{
		JobID:           c.Params("id"),
		FullName:        payload.FullName,
		Email:           payload.Email,
		Phone:           payload.Phone,
		LinkedinProfile: payload.LinkedinProfile,
		PortfolioURL:    payload.PortfolioURL,
		NoticePeriod:    payload.NoticePeriod,
		CurrentSalary:   payload.CurrentSalary,
		ExpectedSalary:  payload.ExpectedSalary,
		ResumeRef:       resumeRef,
		CoverLetter:     payload.CoverLetter,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"application": created})
}

// SetStatus handles PATCH /api/applications/:id/status.
func (a *ApplicationsController) SetStatus(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	payload := new(StatusPayload)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	status, valid := ParseApplicationStatus(payload.Status)
	if !valid {
		return ErrInvalidStatus.Clone().WithMetadata(map[string]any{
			"status": payload.Status,
		})
	}

	updated, err := a.Lifecycle.SetStatus(c.UserContext(), rp, c.Params("id"), status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"application": updated})
}

// Show handles GET /api/applications/:id.
func (a *ApplicationsController) Show(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	app, err := a.Lifecycle.Get(c.UserContext(), rp, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"application": app})
}

// ListByJob handles GET /api/jobs/:id/applications for recruiters and
// administrators.
func (a *ApplicationsController) ListByJob(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleRecruiter, RoleAdmin); err != nil {
		return err
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrJobNotFound
	}

	records, err := a.Repo.Applications().ListByJob(c.UserContext(), jobID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not list applications")
	}

	return c.JSON(fiber.Map{"applications": records})
}

// ListMine handles GET /api/me/applications for job seekers.
func (a *ApplicationsController) ListMine(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	if err := RequireRoles(rp, RoleJobSeeker); err != nil {
		return err
	}

	records, err := a.Repo.Applications().ListByApplicant(c.UserContext(), uuidOrNil(rp.ID()))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not list applications")
	}

	return c.JSON(fiber.Map{"applications": records})
}

func (a *ApplicationsController) storeResume(c *fiber.Ctx, rp *ResolvedPrincipal) (string, error) {
	header, err := c.FormFile("resume")
	if err != nil {
		return "", ErrResumeMissing
	}

	file, err := header.Open()
	if err != nil {
		return "", ErrResumeMissing
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return "", ErrResumeMissing
	}

	stored, err := a.Resumes.Save(
		c.UserContext(),
		rp.ID(),
		header.Filename,
		header.Header.Get(fiber.HeaderContentType),
		data,
	)
	if err != nil {
		a.Logger.Error("resume store error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not store resume")
	}

	return stored.Ref, nil
}
