package http

import (
	"net/http"

	"github.com/NikhilYadav04/pillbin-v2/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Medicine *MedicineHandler
}

// NewRouter constructs the HTTP handler serving the medicine tracker API.
//
// Routes:
//
//	POST   /api/register                            → Auth.Register
//	GET    /api/user/profile                        → User.Profile
//	PUT    /api/user/profile                        → User.EditProfile
//	POST   /api/user/reconcile                      → User.Reconcile
//	POST   /api/medicine/add                        → Medicine.Add
//	GET    /api/medicine/inventory                  → Medicine.Inventory
//	GET    /api/medicine/deleted-inventory          → Medicine.DeletedInventory
//	GET    /api/medicine/{medicineID}               → Medicine.Get
//	PUT    /api/medicine/update/{medicineID}        → Medicine.Update
//	DELETE /api/medicine/delete/{medicineID}        → Medicine.Delete
//	DELETE /api/medicine/delete/{medicineID}/hard   → Medicine.HardDelete
//	DELETE /api/medicine/delete-all-expired         → Medicine.DeleteAllExpired
//	DELETE /api/medicine/delete-all-hard            → Medicine.DeleteAllHard
//	POST   /api/medicine/update-statuses            → Medicine.UpdateStatuses
//	POST   /api/medicine/cleanup-expired            → Medicine.CleanupExpired
//
// Registration is public. The system-wide sweeps require adminToken in the
// X-Admin-Token header; every other route requires a bearer token signed
// with secret.
func NewRouter(h Handlers, secret, adminToken string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	// Bodyless requests carry no Content-Type and pass through.
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.BearerAuth(secret))
			r.Get("/profile", h.User.Profile)
			r.Put("/profile", h.User.EditProfile)
			r.Post("/reconcile", h.User.Reconcile)
		})

		r.Route("/medicine", func(r chi.Router) {
			// System-wide sweeps act on every owner.
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(adminToken))
				r.Post("/update-statuses", h.Medicine.UpdateStatuses)
				r.Post("/cleanup-expired", h.Medicine.CleanupExpired)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.BearerAuth(secret))
				r.Post("/add", h.Medicine.Add)
				r.Get("/inventory", h.Medicine.Inventory)
				r.Get("/deleted-inventory", h.Medicine.DeletedInventory)
				r.Put("/update/{medicineID}", h.Medicine.Update)
				r.Delete("/delete-all-expired", h.Medicine.DeleteAllExpired)
				r.Delete("/delete-all-hard", h.Medicine.DeleteAllHard)
				r.Delete("/delete/{medicineID}", h.Medicine.Delete)
				r.Delete("/delete/{medicineID}/hard", h.Medicine.HardDelete)
				r.Get("/{medicineID}", h.Medicine.Get)
			})
		})
	})

	return r
}
