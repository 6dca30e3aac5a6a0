package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/entcal/internal/container"
	"github.com/joshua-takyi/entcal/internal/handlers"
	"github.com/joshua-takyi/entcal/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", handlers.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", handlers.SessionHeader},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics(container.Metrics))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	auth := container.Auth
	viewer := handlers.ResolveViewer(container.PreferencesService)
	es := container.EventService

	v1 := r.Group("/api/v1")
	v1.GET("/health", handlers.Health())
	v1.GET("/genres", handlers.ListGenres(es))

	// public routes, personalised when signed in
	public := v1.Group("/", auth.OptionalAuth(), viewer)
	{
		public.GET("/events", handlers.ListEvents(es))
		public.GET("/events/:id", handlers.GetEvent(es))
		public.GET("/events/:id/ical", handlers.ExportEventICS(es))
		public.POST("/events/:id/views", handlers.TrackView(container.ViewService))

		public.GET("/calendar/week", handlers.WeekCalendar(es))
		public.GET("/calendar/month", handlers.MonthCalendar(es))
		public.GET("/calendar/rolling", handlers.RollingCalendar(es))
	}

	protected := v1.Group("/", auth.RequireAuth(), viewer)
	{
		protected.GET("/preferences", handlers.GetPreferences(container.PreferencesService))
		protected.PUT("/preferences", handlers.UpdatePreferences(container.PreferencesService))

		protected.GET("/favorites", handlers.GetFavorites(container.FavoritesService))
		protected.POST("/favorites/:event_id", handlers.AddToFavorites(container.FavoritesService))
		protected.DELETE("/favorites/:event_id", handlers.RemoveFromFavorites(container.FavoritesService))

		protected.GET("/me", handlers.GetMe(container.UserService))
		protected.PATCH("/me", handlers.UpdateMe(container.UserService))
		protected.POST("/me/become-organizer", handlers.BecomeOrganizer(container.UserService))

		protected.POST("/events", middleware.OrganizerOnly(), handlers.CreateEvent(es))
		protected.GET("/events/mine", middleware.OrganizerOnly(), handlers.ListManagedEvents(es))
		protected.PUT("/events/:id", middleware.OrganizerOnly(), handlers.UpdateEvent(es))
		protected.DELETE("/events/:id", middleware.OrganizerOnly(), handlers.DeleteEvent(es))
		protected.GET("/events/:id/views/stats", handlers.ViewStats(container.ViewService))
	}

	adminRoutes := v1.Group("/admin", auth.RequireAuth(), middleware.AdminOnly(), viewer)
	{
		adminRoutes.PATCH("/events/:id/status", handlers.UpdateEventStatus(es))
		adminRoutes.POST("/events/import", handlers.ImportEvents(es))
		adminRoutes.GET("/users", handlers.ListUsers(container.UserService))
		adminRoutes.PATCH("/users/:id", handlers.UpdateUser(container.UserService))
	}

	return r
}
