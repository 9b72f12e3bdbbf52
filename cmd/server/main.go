package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bendcalc/pkg/api/auth"
	"bendcalc/pkg/api/calc"
	apicompare "bendcalc/pkg/api/compare"
	"bendcalc/pkg/api/middleware"
	"bendcalc/pkg/api/reference"
	"bendcalc/pkg/core/bend"
	"bendcalc/pkg/core/compare"
	"bendcalc/pkg/core/config"
	"bendcalc/pkg/core/store"
	"bendcalc/pkg/models"
)

func main() {
	godotenv.Load()

	configPath := os.Getenv("BENDCALC_CONFIG")
	if configPath == "" {
		configPath = "config/bendcalc.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ktableEntries, err := config.LoadKTable(cfg.KTablePath)
	if err != nil {
		log.Fatalf("k table: %v", err)
	}

	cache := compare.NewCache(cfg.CachePath)
	if err := cache.Load(); err != nil {
		log.Printf("fingerprint cache load failed, starting empty: %v", err)
	}

	r := gin.Default()

	compareHandler := apicompare.NewHandler(compare.NewRegistry(), cache)

	if cfg.DatabasePath == "" {
		// Local single-user mode: everything in memory, no login.
		// Reference writes are open in this mode, so it must never
		// face anything but localhost.
		log.Println("no database configured, running in memory without authentication")
		log.Println("warning: reference mutations (materials, thicknesses, channels, deductions) are unauthenticated in this mode")
		repo := store.NewMemory()
		engine := bend.NewEngine(repo, bend.NewKTable(ktableEntries))
		refHandler := reference.NewHandler(repo, nil)
		calcHandler := calc.NewHandler(engine)

		api := r.Group("/api")
		registerReads(api, refHandler, calcHandler, compareHandler)
		registerWrites(api, api, refHandler)
		registerWindow(api, cfg.WindowPath)
		run(r, cfg.Addr)
		return
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := store.NewReferenceStore(db)
	users := store.NewUserStore(db)
	audit := store.NewAuditLog(db)
	bootstrapAdmin(users)

	engine := bend.NewEngine(repo, bend.NewKTable(ktableEntries))
	refHandler := reference.NewHandler(repo, audit)
	calcHandler := calc.NewHandler(engine)
	authHandler := auth.NewHandler(users)

	secret := cfg.SessionSecret
	if secret == "" {
		secret = "bendcalc-dev-secret"
		log.Println("session_secret not set, using the development default")
	}
	r.Use(sessions.Sessions("bendcalc", cookie.NewStore([]byte(secret))))

	r.POST("/api/login", authHandler.Login)
	r.POST("/api/logout", authHandler.Logout)
	r.POST("/api/password", authHandler.NewPassword)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	registerReads(api, refHandler, calcHandler, compareHandler)
	registerWindow(api, cfg.WindowPath)

	editor := api.Group("")
	editor.Use(middleware.EditorRequired())

	admin := api.Group("")
	admin.Use(middleware.AdminRequired())
	registerWrites(editor, admin, refHandler)

	admin.GET("/audit", refHandler.AuditRecent)
	admin.POST("/users", authHandler.CreateUser)
	admin.POST("/users/:name/reset", authHandler.ResetUser)
	admin.DELETE("/users/:name", authHandler.DeleteUser)

	run(r, cfg.Addr)
}

func registerReads(g *gin.RouterGroup, ref *reference.Handler, ca *calc.Handler, cmp *apicompare.Handler) {
	g.GET("/materials", ref.ListMaterials)
	g.GET("/thicknesses", ref.ListThicknesses)
	g.GET("/channels", ref.ListChannels)
	g.GET("/deductions", ref.ListDeductions)

	g.POST("/calculate", ca.Calculate)

	g.POST("/compare", cmp.Start)
	g.GET("/compare/:id", cmp.Status)
	g.POST("/compare/:id/cancel", cmp.Cancel)
}

// registerWrites splits mutations by role: editors may add reference
// data, only admins may change or remove it.
func registerWrites(editor, admin *gin.RouterGroup, ref *reference.Handler) {
	editor.POST("/materials", ref.CreateMaterial)
	editor.POST("/thicknesses", ref.CreateThickness)
	editor.POST("/channels", ref.CreateChannel)
	editor.POST("/deductions", ref.CreateDeduction)

	admin.PUT("/materials/:id", ref.UpdateMaterial)
	admin.PUT("/channels/:id", ref.UpdateChannel)
	admin.PUT("/deductions/:id", ref.UpdateDeduction)

	admin.DELETE("/materials/:id", ref.DeleteMaterial)
	admin.DELETE("/thicknesses/:id", ref.DeleteThickness)
	admin.DELETE("/channels/:id", ref.DeleteChannel)
	admin.DELETE("/deductions/:id", ref.DeleteDeduction)
}

// registerWindow lets the client shell persist its window placement
// between sessions.
func registerWindow(g *gin.RouterGroup, path string) {
	g.GET("/window", func(c *gin.Context) {
		c.JSON(http.StatusOK, config.LoadWindow(path))
	})
	g.PUT("/window", func(c *gin.Context) {
		var w config.Window
		if err := c.ShouldBindJSON(&w); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := config.SaveWindow(path, w); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// bootstrapAdmin makes sure a fresh database has a usable login.
func bootstrapAdmin(users *store.UserStore) {
	_, err := users.UserByName("admin")
	if err == nil {
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("users: %v", err)
	}
	if _, err := users.Create("admin", "admin", models.RoleAdmin); err != nil {
		log.Fatalf("failed to create initial admin: %v", err)
	}
	log.Println("created initial admin user (admin/admin), change the password")
}

func run(r *gin.Engine, addr string) {
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
