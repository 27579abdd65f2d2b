package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountHeader carries the tenant identity. Authentication happens upstream
// (gateway); this service only scopes data by account.
const AccountHeader = "X-Account-ID"

const accountContextKey = "account_id"

// RequireAccount parses the account header and stores the UUID in the Echo
// context. Requests without a valid account are rejected.
func RequireAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(AccountHeader)
			if raw == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "Missing "+AccountHeader+" header")
			}
			accountID, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid "+AccountHeader+" header")
			}
			c.Set(accountContextKey, accountID)
			return next(c)
		}
	}
}

// AccountID retrieves the account scoping set by RequireAccount.
func AccountID(c echo.Context) (uuid.UUID, bool) {
	accountID, ok := c.Get(accountContextKey).(uuid.UUID)
	return accountID, ok
}
