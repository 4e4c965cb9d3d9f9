// Package all registers every driver the service can be configured with.
//
//	import _ "github.com/ncobase/taskdesk/data/all"
package all

import (
	// Database drivers
	_ "github.com/ncobase/taskdesk/data/mongodb"
	_ "github.com/ncobase/taskdesk/data/mysql"
	_ "github.com/ncobase/taskdesk/data/postgres"
	_ "github.com/ncobase/taskdesk/data/sqlite"

	// Cache drivers
	_ "github.com/ncobase/taskdesk/data/redis"

	// Messaging drivers
	_ "github.com/ncobase/taskdesk/data/kafka"
	_ "github.com/ncobase/taskdesk/data/rabbitmq"
)
