package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/storefront/internal/common/validate"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

func AttachProductController(mux *mux.Router, service *service.ProductService) {
	controller := ProductController{service: service}

	router := mux.PathPrefix("/products").Subrouter()
	router.HandleFunc("", controller.GetProducts).Methods(http.MethodGet)
}

func (ctrl ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController GetProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query").Logger()
	logger.Trace().Msg("parsing query")
	reqQuery := request.FindProducts{Order: request.OrderAsc}
	if order := r.URL.Query().Get("order"); order != "" {
		reqQuery.Order = request.Order(order)
	}
	span.SetAttributes(attribute.String(log.KeyOrder, string(reqQuery.Order)))
	logger = logger.With().Str(log.KeyOrder, string(reqQuery.Order)).Logger()
	logger.Trace().Msg("parsed query")

	logger = logger.With().Str(log.KeyProcess, "validating query").Logger()
	logger.Trace().Msg("validating query")
	span.AddEvent("validating query")
	if err := validate.New().StructCtx(c, reqQuery); err != nil {
		err = fmt.Errorf("%w: failed validating query with error=%w", inErrors.ErrInvalidArgument, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("validated query")
	logger.Trace().Msg("validated query")

	logger = logger.With().Str(log.KeyProcess, "getting sorted products").Logger()
	logger.Trace().Msg("getting sorted products")
	span.AddEvent("getting sorted products")
	c = logger.WithContext(c)
	products, err := ctrl.service.GetSortedProducts(c, reqQuery.Order)
	if err != nil {
		err = fmt.Errorf("failed getting sorted products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("got sorted products")
	logger.Info().Int(log.KeyProductCount, len(products)).Msg("got sorted products")

	inHttp.WriteJson(c, w, http.StatusOK, products)
}
