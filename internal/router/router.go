package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"inkpress/internal/auth"
	"inkpress/internal/config"
	"inkpress/internal/errors"
	"inkpress/internal/handler"
	"inkpress/internal/upload"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	uploads *upload.Store,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "API is up and running. Access specific endpoints for functionality.")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Committed covers are served back under the same prefix they are
	// recorded with in Post.Cover.
	e.Static("/"+upload.URLPrefix, uploads.Dir())

	// Public routes
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/post", postHandler.List)
	e.GET("/post/:id", postHandler.Get)

	// Secured routes read the session token from the HTTP-only cookie.
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.Auth.JWTSecret),
		TokenLookup: "cookie:" + handler.TokenCookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "not authenticated",
				Code:  "NOT_AUTHENTICATED",
			})
		},
	}), denyListMiddleware(tokenStore))

	secured.GET("/profile", authHandler.Profile)
	secured.POST("/post", postHandler.Create)
	secured.PUT("/post", postHandler.Update)
}

// denyListMiddleware rejects tokens that were revoked by logout. It runs
// after the JWT middleware, so the token is already verified.
func denyListMiddleware(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if ok {
				if claims, ok := token.Claims.(*auth.Claims); ok {
					denied, _ := tokenStore.IsDenied(c.Request().Context(), claims.ID)
					if denied {
						return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
							Error: "token revoked",
							Code:  "TOKEN_REVOKED",
						})
					}
				}
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
