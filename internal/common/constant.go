package common

// AuthorizationHeaderName carries the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the raw token inside the Authorization header.
const BearerPrefix = "Bearer "

// ProductionEnvironment is the environment name that switches logging to JSON
// and hides error details from API responses.
const ProductionEnvironment = "production"
