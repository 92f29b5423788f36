package common

// AccessTokenHeaderName is the HTTP header carrying the bearer access token
// on authenticated requests.
const AccessTokenHeaderName = "Authorization"
