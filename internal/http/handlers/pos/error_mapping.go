package pos

import (
	"errors"

	handlershared "github.com/caja-pos/internal/http/handlers/shared"
	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var sessionCommonErrorRules = []mappedHandlerError{
	{target: service.ErrNoActiveLocation, code: response.CodeBadRequest, key: "error.location_required"},
	{target: service.ErrStorageUnavailable, code: response.CodeStorage, key: "error.storage_unavailable"},
}

var cartAddErrorRules = append([]mappedHandlerError{
	{target: service.ErrDuplicateControlStockItem, code: response.CodeConflict, key: "error.control_stock_duplicate"},
	{target: service.ErrStockExceeded, code: response.CodeConflict, key: "error.stock_exceeded"},
	{target: service.ErrCartCandidateInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrLocationNotFound, code: response.CodeNotFound, key: "error.location_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}, sessionCommonErrorRules...)

var parkedCartErrorRules = append([]mappedHandlerError{
	{target: service.ErrParkedCartNotFound, code: response.CodeNotFound, key: "error.parked_cart_not_found"},
}, sessionCommonErrorRules...)

var discountErrorRules = append([]mappedHandlerError{
	{target: service.ErrDiscountIndexInvalid, code: response.CodeBadRequest, key: "error.discount_index_invalid"},
}, sessionCommonErrorRules...)

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrLocationNotFound, code: response.CodeNotFound, key: "error.location_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrCartCandidateInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartAddErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondParkedCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, parkedCartErrorRules, response.CodeInternal, "error.parked_cart_failed")
}

func respondDiscountError(c *gin.Context, err error) {
	respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "error.discount_update_failed")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.catalog_fetch_failed")
}
