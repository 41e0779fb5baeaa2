package portal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiredesk/portal/storage"
)

// API bundles the portal controllers and registers them on a fiber app.
type API struct {
	Auth         *AuthController
	Jobs         *JobsController
	Applications *ApplicationsController
	Admin        *AdminController
	Resolver     *Resolver
	Logger       Logger
}

// APIDeps carries everything NewAPI needs.
type APIDeps struct {
	Repo        RepositoryManager
	Auther      *Auther
	Resolver    *Resolver
	Lifecycle   *ApplicationLifecycle
	Register    *RegisterPrincipalHandler
	Resumes     storage.ResumeStore
	Sink        ActivitySink
	Logger      Logger
	PhoneRegion string
}

// NewAPI wires the controllers.
func NewAPI(deps APIDeps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &API{
		Resolver: deps.Resolver,
		Logger:   logger,
		Auth: &AuthController{
			Repo:        deps.Repo,
			Auther:      deps.Auther,
			Register:    deps.Register,
			Logger:      logger,
			PhoneRegion: deps.PhoneRegion,
		},
		Jobs: &JobsController{
			Repo:   deps.Repo,
			Logger: logger,
		},
		Applications: &ApplicationsController{
			Repo:        deps.Repo,
			Lifecycle:   deps.Lifecycle,
			Resumes:     deps.Resumes,
			Logger:      logger,
			PhoneRegion: deps.PhoneRegion,
		},
		Admin: &AdminController{
			Repo:   deps.Repo,
			Sink:   normalizeActivitySink(deps.Sink),
			Logger: logger,
		},
	}
}

// RegisterRoutes mounts the HTTP surface under /api.
func (a *API) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	authed := RequireAuth(a.Resolver)

	// Public job read.
	api.Get("/jobs/:id", a.Jobs.Show)

	// Credential endpoints, one collection per role segment.
	api.Post("/:role/register", a.Auth.RegisterPost)
	api.Post("/:role/login", a.Auth.LoginPost)

	// Self service.
	api.Get("/me", authed, a.Auth.Me)
	api.Put("/me", authed, a.Auth.UpdateMe)
	api.Post("/me/password", authed, a.Auth.ChangePassword)
	api.Get("/me/applications", authed, a.Applications.ListMine)

	// Postings.
	api.Post("/jobs", authed, a.Jobs.Create)
	api.Put("/jobs/:id", authed, a.Jobs.Update)
	api.Delete("/jobs/:id", authed, a.Jobs.Delete)
	api.Get("/jobs/:id/applications", authed, a.Applications.ListByJob)

	// Applications.
	api.Post("/jobs/:id/apply", authed, a.Applications.Apply)
	api.Get("/applications/:id", authed, a.Applications.Show)
	api.Patch("/applications/:id/status", authed, a.Applications.SetStatus)

	// Administration.
	admin := api.Group("/admin", authed, RequireRolesMiddleware(RoleAdmin))
	admin.Post("/:role/:id/deactivate", a.Admin.Deactivate)
	admin.Post("/:role/:id/activate", a.Admin.Activate)
	admin.Delete("/:role/:id", a.Admin.Delete)
}

// NewApp builds a fiber app with the portal error handler installed.
func NewApp(logger Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "portal",
		ErrorHandler: NewErrorHandler(logger),
	})
}
