package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"

	"github.com/servicing/ventas/ventas"
)

// BasePath is the prefix of every dashboard route
const BasePath = "/api/ventas"

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterRoutes registers the dashboard routes with the PocketBase router
func RegisterRoutes(e *core.ServeEvent, svc *Service, metrics *Metrics) {
	e.Router.GET(BasePath, svc.handleDataset)
	e.Router.GET(BasePath+"/resumen", svc.handleSummary)
	e.Router.GET(BasePath+"/tendencia", svc.handleTrend)
	e.Router.GET(BasePath+"/coordinadores", svc.handleCoordinators)
	e.Router.GET(BasePath+"/productos", svc.handleProducts)
	e.Router.GET(BasePath+"/ejecutivos/top", svc.handleTopExecutives)
	e.Router.GET(BasePath+"/ejecutivos/top/{cantidad}", svc.handleTopExecutives)
	e.Router.GET(BasePath+"/estado", svc.handleStatus)

	handler := metrics.Handler()
	e.Router.GET(BasePath+"/metrics", func(e *core.RequestEvent) error {
		handler.ServeHTTP(e.Response, e.Request)
		return nil
	})

	slog.Info("Registered sales dashboard routes", "base", BasePath)
}

// withDataset builds a dataset, projects it with view and writes it as
// JSON. Build errors become a 500 carrying failure as the error text.
func (s *Service) withDataset(e *core.RequestEvent, failure string, view func(*ventas.Dataset) any) error {
	ds, err := s.Dataset(e.Request.Context())
	if err != nil {
		slog.Error(failure, "path", e.Request.URL.Path, "error", err)
		return e.JSON(http.StatusInternalServerError, errorResponse{Error: failure, Message: err.Error()})
	}
	return e.JSON(http.StatusOK, view(ds))
}

func (s *Service) handleDataset(e *core.RequestEvent) error {
	return s.withDataset(e, "Error al obtener datos de Google Sheets", func(ds *ventas.Dataset) any {
		return ds.WithRoundedTotals()
	})
}

func (s *Service) handleSummary(e *core.RequestEvent) error {
	return s.withDataset(e, "Error al obtener resumen", func(ds *ventas.Dataset) any {
		return ventas.NewSummary(ds)
	})
}

func (s *Service) handleTrend(e *core.RequestEvent) error {
	return s.withDataset(e, "Error al obtener tendencia", func(ds *ventas.Dataset) any {
		return ventas.NewTrend(ds)
	})
}

func (s *Service) handleCoordinators(e *core.RequestEvent) error {
	return s.withDataset(e, "Error al obtener datos de coordinadores", func(ds *ventas.Dataset) any {
		return ventas.NewCoordinatorBreakdown(ds)
	})
}

func (s *Service) handleProducts(e *core.RequestEvent) error {
	return s.withDataset(e, "Error al obtener datos de productos", func(ds *ventas.Dataset) any {
		return ventas.NewProductRanking(ds)
	})
}

func (s *Service) handleTopExecutives(e *core.RequestEvent) error {
	limit, err := parseLimit(e.Request.PathValue("cantidad"), s.topExecutives)
	if err != nil {
		return e.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Cantidad invalida",
			Message: err.Error(),
		})
	}

	return s.withDataset(e, "Error al obtener top ejecutivos", func(ds *ventas.Dataset) any {
		return ventas.NewExecutiveRanking(ds, limit)
	})
}

func (s *Service) handleStatus(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, s.Status())
}

// parseLimit reads the ranking size path value; empty, zero or negative
// means fallback
func parseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return fallback, nil
	}
	return n, nil
}
