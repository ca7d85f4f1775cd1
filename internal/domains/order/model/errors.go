package model

import (
	"net/http"

	"grocery-backend/internal/shared/apperror"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound = "ORDER_NOT_FOUND"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound = apperror.New(ErrCodeOrderNotFound, "order not found", http.StatusNotFound)
)
