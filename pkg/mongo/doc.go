// Package mongo manages the MongoDB connection backing the billing engine's
// plan, subscription, and audit collections.
//
// Configuration is environment-driven and the connect path retries, since a
// billing process typically starts alongside (or before) its database. The
// Healthcheck helper exposes connectivity as a probe function for readiness
// endpoints.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := subscription.NewMongoStore(db)
package mongo
