// Package router wires the HTTP surface of the service: the login/logout
// pages of the back office and the REST API for categories.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avoronkov42/backoffice/internal/auth"
	"github.com/avoronkov42/backoffice/internal/authenticator"
	"github.com/avoronkov42/backoffice/internal/logger"
	"github.com/avoronkov42/backoffice/internal/models"
)

type categoriesService interface {
	List(ctx context.Context) ([]models.Category, error)
	SearchByName(ctx context.Context, substring string) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id int64, newName string) (*models.Category, error)
	SoftDelete(ctx context.Context, id int64) (*models.Category, error)
}

// Router holds the handlers' collaborators.
type Router struct {
	categories categoriesService
	auth       authenticator.Authenticator
	validate   *validator.Validate
}

var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Back office login</title></head>
<body>
	{{if .ErrorMessage}}<p>{{.ErrorMessage}}</p>{{end}}
	<form method="post" action="/login">
		<label>Mail <input type="text" name="login"></label>
		<label>Password <input type="password" name="password"></label>
		<button type="submit">Log in</button>
	</form>
</body>
</html>
`))

// New builds the chi mux with all routes and middleware attached.
func New(categories categoriesService, sessionAuth authenticator.Authenticator) http.Handler {
	theRouter := &Router{
		categories: categories,
		auth:       sessionAuth,
		validate:   validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)

	mux.Get(`/login`, theRouter.GetLoginPage)
	mux.Post(`/login`, theRouter.PostLogin)
	mux.With(sessionAuth.RequireUser).Get(`/logout`, theRouter.GetLogout)
	mux.With(sessionAuth.RequireUser).Get(`/dashboard`, theRouter.GetDashboard)

	mux.Route(`/api/categories`, func(api chi.Router) {
		api.Get(`/`, theRouter.GetCategories)
		api.Post(`/`, theRouter.PostCategory)
		api.Get(`/{id:[0-9]+}`, theRouter.GetCategoryByID)
		api.Get(`/{name}`, theRouter.GetCategoriesByName)
		api.Put(`/{id:[0-9]+}`, theRouter.PutCategory)
		api.Delete(`/{id:[0-9]+}`, theRouter.DeleteCategory)
	})

	return mux
}

// GetLoginPage renders the login form.
func (rt *Router) GetLoginPage(response http.ResponseWriter, request *http.Request) {
	rt.renderLoginPage(response, http.StatusOK, "")
}

// PostLogin checks the submitted credentials and establishes a session.
// It accepts both an HTML form and a JSON body; failures are reported with
// a single generic message either way.
func (rt *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	credentials, isJSON, err := rt.extractCredentials(request)
	if err != nil {
		rt.replyLoginFailure(response, isJSON, http.StatusBadRequest)
		return
	}

	session, token, err := rt.auth.Login(request.Context(), credentials.Login, credentials.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			rt.replyLoginFailure(response, isJSON, http.StatusUnauthorized)
			return
		}
		logger.Log.Debugln("Error calling the `rt.auth.Login()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	rt.auth.SetSessionCookie(response, token, session.ExpiresAt)

	if isJSON {
		writeJSON(response, http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: session.ExpiresAt,
		})
		return
	}

	http.Redirect(response, request, "/dashboard", http.StatusFound)
}

// GetLogout destroys the current session and redirects to the login page.
func (rt *Router) GetLogout(response http.ResponseWriter, request *http.Request) {
	token := rt.auth.TokenFromRequest(request)
	if err := rt.auth.Logout(request.Context(), token); err != nil {
		logger.Log.Debugln("Error calling the `rt.auth.Logout()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	rt.auth.ClearSessionCookie(response)
	http.Redirect(response, request, "/login", http.StatusFound)
}

// GetDashboard is the landing page of an authenticated back-office user.
func (rt *Router) GetDashboard(response http.ResponseWriter, request *http.Request) {
	userID, _ := request.Context().Value(auth.UserIDKey).(int64)

	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(response, "<!DOCTYPE html><html><body><h1>Dashboard</h1><p>Logged in as user #%d</p><a href=\"/logout\">Log out</a></body></html>", userID)
}

// GetCategories returns every category that is not soft-deleted.
func (rt *Router) GetCategories(response http.ResponseWriter, request *http.Request) {
	categories, err := rt.categories.List(request.Context())
	if err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, categories)
}

// GetCategoryByID returns a single category, soft-deleted or not.
func (rt *Router) GetCategoryByID(response http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := rt.categories.GetByID(request.Context(), id)
	if err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, category)
}

// GetCategoriesByName returns non-deleted categories whose name contains
// the path segment, case-insensitively.
func (rt *Router) GetCategoriesByName(response http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")

	categories, err := rt.categories.SearchByName(request.Context(), name)
	if err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, categories)
}

// PostCategory creates a category from the JSON body and replies 201 with
// the persisted record, including its generated ID.
func (rt *Router) PostCategory(response http.ResponseWriter, request *http.Request) {
	categoryRequest, err := rt.decodeCategoryRequest(request)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := rt.categories.Create(request.Context(), categoryRequest.Name)
	if err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, category)
}

// PutCategory replaces the name of the category addressed by the URL.
// A body whose ID disagrees with the URL is rejected.
func (rt *Router) PutCategory(response http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	categoryRequest, err := rt.decodeCategoryRequest(request)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	if categoryRequest.ID != 0 && categoryRequest.ID != id {
		http.Error(response, "the body ID does not match the URL", http.StatusBadRequest)
		return
	}

	if _, err := rt.categories.Update(request.Context(), id, categoryRequest.Name); err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// DeleteCategory soft-deletes the category and replies with the updated record.
func (rt *Router) DeleteCategory(response http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := rt.categories.SoftDelete(request.Context(), id)
	if err != nil {
		rt.replyCategoryError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, category)
}

func (rt *Router) decodeCategoryRequest(request *http.Request) (*models.CategoryRequest, error) {
	categoryRequest := &models.CategoryRequest{}
	if err := json.NewDecoder(request.Body).Decode(categoryRequest); err != nil {
		return nil, fmt.Errorf("error decoding the request body: %w", err)
	}

	if err := rt.validate.Struct(categoryRequest); err != nil {
		return nil, err
	}

	return categoryRequest, nil
}

func (rt *Router) extractCredentials(request *http.Request) (*models.LoginRequest, bool, error) {
	contentType := request.Header.Get("Content-Type")
	isJSON := strings.HasPrefix(contentType, "application/json")

	credentials := &models.LoginRequest{}
	if isJSON {
		if err := json.NewDecoder(request.Body).Decode(credentials); err != nil {
			return nil, true, err
		}
	} else {
		if err := request.ParseForm(); err != nil {
			return nil, false, err
		}
		credentials.Login = request.PostFormValue("login")
		credentials.Password = request.PostFormValue("password")
	}

	if err := rt.validate.Struct(credentials); err != nil {
		return nil, isJSON, err
	}

	return credentials, isJSON, nil
}

func (rt *Router) replyLoginFailure(response http.ResponseWriter, isJSON bool, status int) {
	if isJSON {
		http.Error(response, models.ErrInvalidCredentials.Error(), status)
		return
	}

	rt.renderLoginPage(response, status, models.ErrInvalidCredentials.Error())
}

func (rt *Router) renderLoginPage(response http.ResponseWriter, status int, errorMessage string) {
	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(status)

	err := loginPageTemplate.Execute(response, struct{ ErrorMessage string }{errorMessage})
	if err != nil {
		logger.Log.Debugln("Error rendering the login page: ", zap.Error(err))
	}
}

func (rt *Router) replyCategoryError(response http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.WriteHeader(http.StatusNotFound)

	case errors.Is(err, models.ErrCategoryDeleted):
		http.Error(response, err.Error(), http.StatusConflict)

	case errors.Is(err, models.ErrEmptyName):
		http.Error(response, err.Error(), http.StatusBadRequest)

	default:
		logger.Log.Debugln("Error from the categories service: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
	}
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)

	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}
