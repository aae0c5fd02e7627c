package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/01moynul/calibration-catalog/internal/handlers"
	"github.com/01moynul/calibration-catalog/internal/middleware"
)

// Options configures the router around the handlers.
type Options struct {
	CORSOrigin  string
	UploadDir   string        // served under /uploads
	Redis       *redis.Client // rate limiting; nil disables it
	RateLimit   int           // submissions per minute per client
	Tracing     bool          // wrap requests in OpenTelemetry spans
	ServiceName string
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.Default()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(middleware.CORSMiddleware(opts.CORSOrigin))
	if opts.Tracing {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}

	// --- Uploaded files ---
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/login", middleware.RateLimiter(opts.Redis, "login", opts.RateLimit), h.Login)

		// --- Public Catalog Routes ---
		api.GET("/catalog", h.GetCatalog)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.GetAllCategories)
		api.GET("/categories/:id", h.GetCategory)

		// --- Public Content Routes ---
		api.GET("/events", h.ListEvents)
		api.GET("/events/:id", h.GetEvent)
		api.GET("/customers", h.ListCustomers)
		api.GET("/customers/:id", h.GetCustomer)
		api.GET("/industries", h.ListIndustries)
		api.GET("/industries/:id", h.GetIndustry)
		api.GET("/team", h.ListTeam)
		api.GET("/team/:id", h.GetTeamMember)
		api.GET("/testimonials", h.ListTestimonials)
		api.GET("/testimonials/:id", h.GetTestimonial)
		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/:id", h.GetJob)
		api.GET("/gallery", h.ListGallery)
		api.GET("/settings", h.GetSettings)

		// --- Public Submissions (rate limited) ---
		forms := api.Group("/")
		forms.Use(middleware.RateLimiter(opts.Redis, "forms", opts.RateLimit))
		{
			forms.POST("/quotes", h.CreateQuote)
			forms.POST("/messages", h.CreateMessage)
			forms.POST("/apply", h.ApplyForJob)
			forms.POST("/chatbot", h.ChatBot)
		}

		// --- Protected Routes (Admin Login Required) ---
		admin := api.Group("/")
		admin.Use(middleware.AdminAuth(h.Tokens))
		{
			admin.GET("/auth/me", h.Me)
			admin.GET("/admin/dashboard", h.GetDashboardStats)
			admin.POST("/uploads", h.UploadFile)

			// --- Products ---
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/rank", h.UpdateProductRanks)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			// --- Categories ---
			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)
			admin.DELETE("/subcategories/:id", h.DeleteSubcategory)

			// --- Quotes & Messages ---
			admin.GET("/quotes", h.ListQuotes)
			admin.GET("/quotes/:id", h.GetQuote)
			admin.PUT("/quotes/:id/status", h.UpdateQuoteStatus)
			admin.DELETE("/quotes/:id", h.DeleteQuote)
			admin.GET("/messages", h.ListMessages)
			admin.PUT("/messages/:id/replied", h.MarkMessageReplied)
			admin.DELETE("/messages/:id", h.DeleteMessage)

			// --- Content ---
			admin.POST("/events", h.CreateEvent)
			admin.PUT("/events/:id", h.UpdateEvent)
			admin.DELETE("/events/:id", h.DeleteEvent)
			admin.POST("/customers", h.CreateCustomer)
			admin.PUT("/customers/:id", h.UpdateCustomer)
			admin.DELETE("/customers/:id", h.DeleteCustomer)
			admin.POST("/industries", h.CreateIndustry)
			admin.PUT("/industries/:id", h.UpdateIndustry)
			admin.DELETE("/industries/:id", h.DeleteIndustry)
			admin.POST("/testimonials", h.CreateTestimonial)
			admin.PUT("/testimonials/:id", h.UpdateTestimonial)
			admin.DELETE("/testimonials/:id", h.DeleteTestimonial)
			admin.POST("/team", h.CreateTeamMember)
			admin.PUT("/team/:id", h.UpdateTeamMember)
			admin.DELETE("/team/:id", h.DeleteTeamMember)

			// --- Careers ---
			admin.GET("/admin/jobs", h.ListAllJobs)
			admin.POST("/jobs", h.CreateJob)
			admin.PUT("/jobs/:id", h.UpdateJob)
			admin.DELETE("/jobs/:id", h.DeleteJob)
			admin.GET("/applications", h.ListApplications)

			// --- Media ---
			admin.POST("/gallery", h.CreateGalleryItems)
			admin.DELETE("/gallery/:id", h.DeleteGalleryItem)
			admin.PUT("/settings", h.UpdateSettings)
		}
	}

	return router
}
