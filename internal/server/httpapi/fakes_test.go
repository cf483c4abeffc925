package httpapi

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/moviesearch/internal/common"
	"github.com/dmitrijs2005/moviesearch/internal/server/auth"
	"github.com/dmitrijs2005/moviesearch/internal/server/models"
	"github.com/dmitrijs2005/moviesearch/internal/server/services"
)

type fakeAuth struct {
	mu        sync.Mutex
	loginRes  *services.LoginResult
	loginErr  error
	claims    *auth.Claims
	authErr   error
	lastLogin services.LoginRequest
	lastMeta  models.RequestMeta
	lastToken string
	loggedOut []string
}

func (f *fakeAuth) Login(ctx context.Context, req services.LoginRequest, meta models.RequestMeta) (*services.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = req
	f.lastMeta = meta
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Authorize(ctx context.Context, token string) (*auth.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.claims == nil {
		return nil, common.ErrInvalidToken
	}
	return f.claims, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
}

type fakeSearcher struct {
	rp      *models.ResultPage
	err     error
	lastUID int64
	lastReq services.SearchRequest
}

func (f *fakeSearcher) Search(ctx context.Context, userID int64, req services.SearchRequest, meta models.RequestMeta) (*models.ResultPage, error) {
	f.lastUID = userID
	f.lastReq = req
	return f.rp, f.err
}

type fakeSaver struct {
	id      int64
	err     error
	lastUID int64
	lastReq services.InsertMovieRequest
}

func (f *fakeSaver) Insert(ctx context.Context, userID int64, req services.InsertMovieRequest, meta models.RequestMeta) (int64, error) {
	f.lastUID = userID
	f.lastReq = req
	return f.id, f.err
}
