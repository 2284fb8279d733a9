package service

import (
	"context"
	"errors"
	"strings"

	"quill/internal/auth"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgBadCredentials = "No active account found with the given credentials"
	msgTokenInvalid   = "Token is invalid or expired"
	msgTokenRevoked   = "Token is blacklisted"
	msgForeignToken   = "Token does not belong to the current user."
	msgPasswordMatch  = "Password fields didn't match."
	msgRegistered     = "User registered successfully"
	msgLoggedOut      = "Successfully logged out"

	maxNameLength = 150
)

type AuthService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	tokenRepo  repository.TokenRepository
	issuer     *auth.Issuer
	bcryptCost int
}

type RegisterInput struct {
	Username  *string `json:"username"`
	Email     string  `json:"email"`
	Password  *string `json:"password"`
	Password2 *string `json:"password2"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	IsAuthor  bool    `json:"is_author"`
}

// RegisterResult is the body answered on successful registration.
type RegisterResult struct {
	User    models.UserProfile `json:"user"`
	Tokens  models.TokenPair   `json:"tokens"`
	Message string             `json:"message"`
}

// ProfileInput holds the editable profile fields. Nil fields are unchanged.
type ProfileInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsAuthor  *bool   `json:"is_author"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	tokenRepo repository.TokenRepository,
	issuer *auth.Issuer,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		tokenRepo:  tokenRepo,
		issuer:     issuer,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost, mainly for tests.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (result *RegisterResult, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "Register")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordAuth("register", outcome(err))
	}()

	var errs fieldErrors
	if in.Username == nil {
		errs.add("username", msgRequired)
	} else {
		errs.add("username", validation.UsernameProblem(*in.Username))
	}
	errs.add("email", validation.EmailProblem(in.Email))
	errs.add("first_name", validation.MaxLengthProblem(in.FirstName, maxNameLength))
	errs.add("last_name", validation.MaxLengthProblem(in.LastName, maxNameLength))
	errs.requireText("password", in.Password, 0)
	errs.requireText("password2", in.Password2, 0)
	if in.Password != nil && *in.Password != "" {
		username := ""
		if in.Username != nil {
			username = *in.Username
		}
		for _, problem := range validation.PasswordProblems(*in.Password, username, in.Email, in.FirstName, in.LastName) {
			errs.add("password", problem)
		}
	}
	if err := errs.result(); err != nil {
		return nil, err
	}
	if *in.Password != *in.Password2 {
		return nil, models.NewFieldError("password", msgPasswordMatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:  *in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsAuthor:  in.IsAuthor,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issuer.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &RegisterResult{
		User:    models.NewUserProfile(user),
		Tokens:  tokens,
		Message: msgRegistered,
	}, nil
}

// Login exchanges credentials for a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (pair *models.TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "Login")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordAuth("login", outcome(err))
	}()

	var errs fieldErrors
	if username == "" {
		errs.add("username", msgRequired)
	}
	if password == "" {
		errs.add("password", msgRequired)
	}
	if err := errs.result(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError(msgBadCredentials)
	}

	tokens, err := s.issuer.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &tokens, nil
}

// Refresh issues a new access token for a valid, unrevoked refresh token.
func (s *AuthService) Refresh(ctx context.Context, raw string) (access *models.AccessToken, err error) {
	defer func() { observability.RecordAuth("refresh", outcome(err)) }()

	if strings.TrimSpace(raw) == "" {
		return nil, models.NewFieldError("refresh", msgRequired)
	}
	claims, err := s.issuer.Parse(raw, auth.RefreshToken)
	if err != nil {
		return nil, models.NewUnauthorizedError(msgTokenInvalid)
	}
	revoked, err := s.tokenRepo.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, models.NewUnauthorizedError(msgTokenRevoked)
	}
	userID, _ := claims.UserID()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUnauthorizedError(msgTokenInvalid)
		}
		return nil, err
	}

	token, err := s.issuer.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.AccessToken{Access: token}, nil
}

// Logout revokes the requester's refresh token. Revoking twice succeeds.
func (s *AuthService) Logout(ctx context.Context, r models.Requester, raw string) (message string, err error) {
	defer func() { observability.RecordAuth("logout", outcome(err)) }()

	if err := RequireAuthenticated(r); err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", models.NewFieldError("refresh", msgRequired)
	}
	claims, err := s.issuer.Parse(raw, auth.RefreshToken)
	if err != nil {
		return "", models.NewValidationError(msgTokenInvalid)
	}
	if userID, _ := claims.UserID(); userID != r.UserID {
		return "", models.NewValidationError(msgForeignToken)
	}

	if err := s.tokenRepo.Blacklist(ctx, &models.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    r.UserID,
		ExpiresAt: claims.Expiry(),
	}); err != nil {
		return "", err
	}
	return msgLoggedOut, nil
}

// Authenticate resolves an access token to the requester it acts as.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (models.Requester, error) {
	claims, err := s.issuer.Parse(raw, auth.AccessToken)
	if err != nil {
		return models.Anonymous(), models.NewUnauthorizedError("Given token not valid for any token type")
	}
	userID, _ := claims.UserID()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Anonymous(), models.NewUnauthorizedError("User not found")
		}
		return models.Anonymous(), err
	}
	return models.Requester{UserID: user.ID, IsAuthor: user.IsAuthor}, nil
}

// GetProfile returns the requester's profile with their published post count.
func (s *AuthService) GetProfile(ctx context.Context, r models.Requester) (*models.UserProfile, error) {
	if err := RequireAuthenticated(r); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, r.UserID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

// UpdateProfile edits the requester's email, names and author flag.
func (s *AuthService) UpdateProfile(ctx context.Context, r models.Requester, in ProfileInput) (*models.UserProfile, error) {
	if err := RequireAuthenticated(r); err != nil {
		return nil, err
	}

	var errs fieldErrors
	if in.Email != nil {
		errs.add("email", validation.EmailProblem(*in.Email))
	}
	errs.optionalText("first_name", in.FirstName, maxNameLength)
	errs.optionalText("last_name", in.LastName, maxNameLength)
	if err := errs.result(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, r.UserID)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.IsAuthor != nil {
		user.IsAuthor = *in.IsAuthor
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *AuthService) profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	count, err := s.postRepo.CountPublishedByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.PostsCount = count
	profile := models.NewUserProfile(user)
	return &profile, nil
}

// outcome labels an auth event for metrics.
func outcome(err error) string {
	var appErr *models.AppError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &appErr) && appErr.Code == models.CodeInternal:
		return "error"
	case errors.As(err, &appErr):
		return "rejected"
	default:
		return "error"
	}
}
