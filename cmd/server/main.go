package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/campushack/portal/internal/config"
	"github.com/campushack/portal/internal/handler"
	"github.com/campushack/portal/internal/mailer"
	"github.com/campushack/portal/internal/middleware"
	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/oauth"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/internal/service"
	"github.com/campushack/portal/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg)
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminAccount(db); err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}
		if err := seedDemoProblem(db); err != nil {
			log.Fatalf("failed to seed demo problem: %v", err)
		}
	}

	accountRepo := repository.NewAccountRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	problemRepo := repository.NewProblemRepository(db)

	mailSender := mailer.NewSMTPSender(cfg)

	stateStore := newStateStore(cfg)
	providers := buildProviders(cfg)

	tokenService := service.NewTokenService(cfg)
	identityService := service.NewIdentityService(accountRepo, mailSender)
	authService := service.NewAuthService(accountRepo, identityService, tokenService, mailSender, cfg)
	oauthService := service.NewOAuthService(providers, stateStore, identityService, tokenService)
	teamService := service.NewTeamService(accountRepo, teamRepo, submissionRepo)
	submissionService := service.NewSubmissionService(teamRepo, submissionRepo, problemRepo)

	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(oauthService, cfg.FrontendURL)
	teamHandler := handler.NewTeamHandler(teamService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)

	router := gin.New()
	setupCORS(router, cfg)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgotpassword", authHandler.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", authHandler.ResetPassword)

		for _, name := range oauthService.Providers() {
			auth.GET("/"+name, oauthHandler.Login(name))
			auth.GET("/"+name+"/callback", oauthHandler.Callback(name))
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/verify", authHandler.Verify)

		protected.GET("/teams/member", teamHandler.FindMember)
		protected.POST("/teams/register", teamHandler.Register)

		protected.POST("/submissions/register", submissionHandler.Register)
		protected.PUT("/submissions/submit", submissionHandler.Submit)

		organizer := protected.Group("")
		organizer.Use(authMiddleware.RequireRole(model.RoleJudge, model.RoleAdministrator))
		{
			organizer.GET("/submissions/problem/:problem_id/teams", submissionHandler.ListTeams)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Account{},
		&model.ExternalIdentity{},
		&model.Team{},
		&model.TeamMember{},
		&model.Hackathon{},
		&model.Problem{},
		&model.Submission{},
	)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func newStateStore(cfg *config.Config) oauth.StateStore {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, using in-memory oauth state store")
		return oauth.NewMemoryStateStore()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	return oauth.NewRedisStateStore(redis.NewClient(opts))
}

func buildProviders(cfg *config.Config) []oauth.Provider {
	callback := func(name string) string {
		return fmt.Sprintf("%s/api/auth/%s/callback", cfg.BaseURL, name)
	}

	constructors := map[string]func(id, secret, redirect string) oauth.Provider{
		"google":    oauth.NewGoogle,
		"github":    oauth.NewGitHub,
		"microsoft": oauth.NewMicrosoft,
		"facebook":  oauth.NewFacebook,
		"spotify":   oauth.NewSpotify,
	}

	var providers []oauth.Provider
	for name, build := range constructors {
		creds := cfg.OAuth[name]
		if creds.ClientID == "" {
			log.Printf("%s oauth disabled (no client id configured)", name)
			continue
		}
		providers = append(providers, build(creds.ClientID, creds.ClientSecret, callback(name)))
	}

	return providers
}

func seedAdminAccount(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Account{}).
		Where("email = ?", "admin@campushack.io").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin account already exists, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.Account{
		Name:         "Administrator",
		Email:        "admin@campushack.io",
		Role:         model.RoleAdministrator,
		PasswordHash: string(hash),
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Admin account seeded (admin@campushack.io / admin123)")
	return nil
}

func seedDemoProblem(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Hackathon{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hackathon := model.Hackathon{
		Name:  "CampusHack Demo",
		Theme: "Open Innovation",
	}
	if err := db.Create(&hackathon).Error; err != nil {
		return err
	}

	problem := model.Problem{
		Title:       "Smart Campus Navigation",
		Domain:      "AI",
		Difficulty:  "Medium",
		IsActive:    true,
		HackathonID: hackathon.ID,
	}
	if err := db.Create(&problem).Error; err != nil {
		return err
	}

	log.Printf("Demo problem seeded (%s)", problem.ID)
	return nil
}
