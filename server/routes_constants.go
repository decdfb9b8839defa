package server

// Route path constants
// The login page path is configurable (LOGIN_PATH); everything else is fixed.
const (
	// Broker API
	RouteAuthPrefix          = "/api/auth"
	RouteCredentialsCallback = RouteAuthPrefix + "/callback/credentials"
	RouteRegister            = RouteAuthPrefix + "/register"
	RouteSignIn              = RouteAuthPrefix + "/signin/{provider}"
	RouteProviderCallback    = RouteAuthPrefix + "/callback/{provider}"
	RouteSession             = RouteAuthPrefix + "/session"
	RouteRefresh             = RouteAuthPrefix + "/refresh"
	RouteSignOut             = RouteAuthPrefix + "/signout"
	RouteProviders           = RouteAuthPrefix + "/providers"
	RouteAuthPreflight       = RouteAuthPrefix + "/{path...}"

	// Everything not matched above runs through the route gate
	RouteGated = "/"
)

// Query parameters understood by the login page
const (
	ParamCallbackURL = "callbackUrl"
	ParamError       = "error"
)

// Error codes passed to the login page in the error parameter
const (
	ErrorCodeCredentials  = "CredentialsSignin"
	ErrorCodeOAuth        = "OAuthCallback"
	ErrorCodeFederation   = "FederationDegraded"
	ErrorCodeUnavailable  = "ServiceUnavailable"
	ErrorCodeRegistration = "RegistrationRejected"
)
