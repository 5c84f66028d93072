package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/innledger/internal/assets"
	"github.com/smallbiznis/innledger/internal/audit"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	"github.com/smallbiznis/innledger/internal/auth"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/authorization"
	"github.com/smallbiznis/innledger/internal/config"
	"github.com/smallbiznis/innledger/internal/hotel"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/smallbiznis/innledger/internal/invoice"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/innledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/innledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/innledger/internal/observability/tracing"
	"github.com/smallbiznis/innledger/internal/provisioning"
	provisioningdomain "github.com/smallbiznis/innledger/internal/provisioning/domain"
	"github.com/smallbiznis/innledger/internal/ratelimit"
	"github.com/smallbiznis/innledger/internal/room"
	roomdomain "github.com/smallbiznis/innledger/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	ratelimit.Module,
	authorization.Module,
	audit.Module,
	auth.Module,
	hotel.Module,
	room.Module,
	invoice.Module,
	provisioning.Module,
	assets.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

var registerValidatorOnce sync.Once

func NewEngine(obsCfg observability.Config, cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidatorOnce.Do(useJSONFieldNames)

	r := gin.New()
	r.Use(gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// useJSONFieldNames makes binding errors report request field names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	hotelSvc        hoteldomain.Service
	roomSvc         roomdomain.Service
	invoiceSvc      invoicedomain.Service
	provisioningSvc provisioningdomain.Service
	assetSvc        *assets.Service
	loginLimiter    *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	HotelSvc        hoteldomain.Service
	RoomSvc         roomdomain.Service
	InvoiceSvc      invoicedomain.Service
	ProvisioningSvc provisioningdomain.Service
	AssetSvc        *assets.Service
	LoginLimiter    *ratelimit.LoginLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		hotelSvc:        p.HotelSvc,
		roomSvc:         p.RoomSvc,
		invoiceSvc:      p.InvoiceSvc,
		provisioningSvc: p.ProvisioningSvc,
		assetSvc:        p.AssetSvc,
		loginLimiter:    p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerAssetRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.LoginRateLimit(), s.Login)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Hotel profile --------
	api.GET("/hotel", s.authorize(authorization.ObjectProfile, authorization.ActionView), s.GetHotel)
	api.PUT("/hotel/profile", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UpdateHotelProfile)
	api.PUT("/hotel/gst", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UpdateHotelGST)
	api.POST("/hotel/complete-profile", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.CompleteHotelProfile)
	api.POST("/hotel/logo", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UploadHotelLogo)
	api.POST("/hotel/signature", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UploadHotelSignature)

	// -------- Rooms --------
	api.GET("/rooms", s.authorize(authorization.ObjectRooms, authorization.ActionView), s.ListRooms)
	api.POST("/rooms", s.authorize(authorization.ObjectRooms, authorization.ActionManage), s.CreateRoom)
	api.PATCH("/rooms/:id", s.authorize(authorization.ObjectRooms, authorization.ActionManage), s.UpdateRoom)

	// -------- Invoices --------
	api.GET("/invoices", s.authorize(authorization.ObjectInvoices, authorization.ActionView), s.ListInvoices)
	api.POST("/invoices", s.authorize(authorization.ObjectInvoices, authorization.ActionCreate), s.CreateInvoice)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoices, authorization.ActionView), s.GetInvoice)
	api.PATCH("/invoices/:id/guest", s.authorize(authorization.ObjectInvoices, authorization.ActionUpdate), s.UpdateInvoiceGuest)
	api.POST("/invoices/:id/rooms", s.authorize(authorization.ObjectInvoices, authorization.ActionUpdate), s.AttachInvoiceRoom)
	api.POST("/invoices/:id/preview", s.authorize(authorization.ObjectInvoices, authorization.ActionView), s.PreviewInvoice)
	api.POST("/invoices/:id/finalize", s.authorize(authorization.ObjectInvoices, authorization.ActionFinalize), s.FinalizeInvoice)
	api.POST("/invoices/:id/void", s.authorize(authorization.ObjectInvoices, authorization.ActionVoid), s.VoidInvoice)
	api.DELETE("/invoices/:id", s.authorize(authorization.ObjectInvoices, authorization.ActionDelete), s.DeleteInvoice)
	api.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoices, authorization.ActionView), s.DownloadInvoicePDF)

	api.DELETE("/room-stays/:id", s.authorize(authorization.ObjectInvoices, authorization.ActionUpdate), s.RemoveRoomStay)
	api.POST("/room-stays/:id/charges", s.authorize(authorization.ObjectInvoices, authorization.ActionUpdate), s.AddRoomStayCharges)
	api.DELETE("/charges/:id", s.authorize(authorization.ObjectInvoices, authorization.ActionUpdate), s.RemoveCharge)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired())

	admin.GET("/hotels", s.authorize(authorization.ObjectHotels, authorization.ActionList), s.ListHotels)
	admin.POST("/hotels", s.authorize(authorization.ObjectHotels, authorization.ActionCreate), s.ProvisionHotel)
	admin.GET("/hotels/:id", s.authorize(authorization.ObjectHotels, authorization.ActionView), s.GetHotelByID)
	admin.POST("/hotels/:id/status", s.authorize(authorization.ObjectHotels, authorization.ActionToggle), s.SetHotelStatus)

	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLogs, authorization.ActionView), s.ListAuditLogs)
}

// registerAssetRoutes serves uploaded logos and signatures when they live on
// local disk.
func (s *Server) registerAssetRoutes() {
	if s.cfg.Assets.Driver != "local" {
		return
	}
	prefix := strings.TrimSpace(s.cfg.Assets.PublicBaseURL)
	if !strings.HasPrefix(prefix, "/") || prefix == "/" {
		return
	}
	s.engine.Static(prefix, s.cfg.Assets.LocalDir)
}
