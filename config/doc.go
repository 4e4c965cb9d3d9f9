// Package config loads the service configuration with viper.
//
// A file is read from the path given on the command line, or searched as
// config.{yaml,json,toml} in /etc/taskdesk, $HOME/.taskdesk and the working
// directory. Every key can be overridden from the environment with the
// TASKDESK_ prefix, dots becoming underscores:
//
//	TASKDESK_SERVER_PORT=9000 TASKDESK_BACKEND_DRIVER=memory taskdesk serve
//
// Watch re-reads the file on change and hands the new value to a callback.
package config
