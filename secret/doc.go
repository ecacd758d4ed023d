// Package secret resolves credentials referenced from configuration, such
// as the admin API token and the session signing key.
//
// A configured value is first expanded strictly against the environment
// (see ExpandEnvStrict), then any "secretref:" references are resolved
// through a registered Provider:
//
//	api:
//	  token: ${FLEETSYNC_API_TOKEN}
//	session:
//	  jwt:
//	    signing_key: secretref:file:/run/secrets/fleetsync_jwt
//
// EnvProvider ("env") and FileProvider ("file") are built in.
package secret
