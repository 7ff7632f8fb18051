// Package api exposes the model catalog and data generation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/TFMV/datagen/logger"
	"github.com/TFMV/datagen/pkg/generator"
	"github.com/TFMV/datagen/pkg/model"
	"github.com/TFMV/datagen/pkg/table"
	"github.com/TFMV/datagen/version"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Port    string
	Prefork bool
	// MaxRows caps the row count of a single /generate request.
	MaxRows int
	// MaxWorkers is used when a request does not set max_workers.
	MaxWorkers int
	// Catalog defaults to the built-in sample models.
	Catalog *model.Catalog
	Logger  *zap.Logger
}

// Server holds the Fiber app instance
type Server struct {
	app  *fiber.App
	opts ServerOptions
	log  *zap.Logger
}

// GenerateRequest is the body of POST /generate. Exactly one of Model and
// Schema names the model to generate.
type GenerateRequest struct {
	Model      string            `json:"model"`
	Schema     json.RawMessage   `json:"schema,omitempty"`
	Rows       int               `json:"rows"`
	BatchSize  int               `json:"batch_size,omitempty"`
	Seed       *int64            `json:"seed,omitempty"`
	MaxWorkers int               `json:"max_workers,omitempty"`
	Types      map[string]string `json:"types,omitempty"`
	Fields     []string          `json:"fields,omitempty"`
}

// GenerateResponse is the body returned by POST /generate.
type GenerateResponse struct {
	Model   string         `json:"model"`
	Rows    int            `json:"rows"`
	Batches int            `json:"batches"`
	Columns []table.Column `json:"columns"`
}

// NewServer initializes a new Fiber instance
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "3000"
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = 100000
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.NumCPU()
	}
	if opts.Catalog == nil {
		opts.Catalog = model.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	s := &Server{opts: opts, log: opts.Logger}
	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		Prefork:      opts.Prefork,
		UnescapePath: true,
		ErrorHandler: s.handleError,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/version", s.version)
	app.Get("/models", s.listModels)
	app.Get("/models/:name", s.getModel)
	app.Post("/generate", s.generate)

	s.app = app
	return s
}

// GetApp returns the underlying Fiber app, mainly for app.Test.
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("datagen API is running", zap.String("port", s.opts.Port))
		errCh <- s.app.Listen(":" + s.opts.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Received shutdown signal, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	s.log.Info("Server shutdown successfully")
	return nil
}

// Shutdown stops the server, waiting for open requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) version(c *fiber.Ctx) error {
	info := version.GetInfo()
	return c.JSON(fiber.Map{
		"service":    "datagen API",
		"version":    info.Version,
		"build":      info.BuildDate,
		"go_version": info.GoVersion,
		"platform":   info.Platform,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listModels(c *fiber.Ctx) error {
	models := s.opts.Catalog.Search(c.Query("search"))
	if models == nil {
		models = []model.ModelSpec{}
	}
	return c.JSON(models)
}

func (s *Server) getModel(c *fiber.Ctx) error {
	m, err := s.opts.Catalog.Get(c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (s *Server) generate(c *fiber.Ctx) error {
	var body GenerateRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if body.Rows > s.opts.MaxRows {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("rows must be at most %d, got %d", s.opts.MaxRows, body.Rows))
	}

	m, err := s.resolveModel(body)
	if err != nil {
		return err
	}

	req := generator.Request{
		Model:      m,
		RowCount:   body.Rows,
		BatchSize:  body.BatchSize,
		Seed:       body.Seed,
		MaxWorkers: body.MaxWorkers,
	}
	if req.BatchSize == 0 {
		req.BatchSize = 1000
	}
	if req.MaxWorkers == 0 {
		req.MaxWorkers = s.opts.MaxWorkers
	}

	start := time.Now()
	tbl, err := generator.GenerateData(c.UserContext(), req, nil)
	if err != nil {
		return err
	}
	s.log.Info("Generated dataset",
		zap.String("model", m.Name),
		zap.Int("rows", tbl.NumRows()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return c.JSON(GenerateResponse{
		Model:   m.Name,
		Rows:    tbl.NumRows(),
		Batches: len(generator.Batches(req.RowCount, req.BatchSize)),
		Columns: tbl.Columns,
	})
}

// resolveModel finds the requested model and applies type overrides and
// field selection.
func (s *Server) resolveModel(body GenerateRequest) (model.ModelSpec, error) {
	var (
		m   model.ModelSpec
		err error
	)
	switch {
	case len(body.Schema) > 0:
		// JSON is valid YAML, so inline schemas share the model file parser.
		if m, err = model.ParseModel(body.Schema); err != nil {
			err = fmt.Errorf("%w: %w", generator.ErrInvalidRequest, err)
		}
	case body.Model != "":
		m, err = s.opts.Catalog.Get(body.Model)
	default:
		err = fmt.Errorf("%w: model or schema is required", generator.ErrInvalidRequest)
	}
	if err != nil {
		return model.ModelSpec{}, err
	}

	if len(body.Types) > 0 {
		overrides := make(map[string]model.SemanticType, len(body.Types))
		for name, typ := range body.Types {
			t, ok := model.ParseSemanticType(typ)
			if !ok {
				return model.ModelSpec{}, fmt.Errorf("%w: unknown type %q for field '%s'", model.ErrInvalidModel, typ, name)
			}
			overrides[name] = t
		}
		if m, err = m.WithFieldTypes(overrides); err != nil {
			return model.ModelSpec{}, err
		}
	}
	return m.Select(body.Fields)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, model.ErrModelNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidModel),
		errors.Is(err, generator.ErrInvalidRequest),
		errors.Is(err, generator.ErrInvalidConstraint):
		code = fiber.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = fiber.StatusServiceUnavailable
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(errorResponse{Error: strings.TrimSpace(err.Error())})
}
