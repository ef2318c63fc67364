// Package environment names the deployment stage the process runs in.
//
// The stage drives two decisions in envctl: which logger preset is used and
// whether a registry is built in production mode.
//
//	env := environment.FromEnv()
//	registry, err := builder.Production(env.IsProduction).Build()
//
// Parse accepts the canonical names as well as the short aliases "dev",
// "stage" and "prod".
package environment
