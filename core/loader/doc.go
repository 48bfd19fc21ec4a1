// Package loader mounts HTTP features on a fiber router.
//
// A feature reports its name, whether it is enabled and registers its routes
// in Load. The Manager keeps features in registration order and LoadAll
// mounts the enabled ones, stopping at the first failure.
//
//	mgr := loader.NewManager(log)
//	mgr.Register(collection.NewFeature(p, "/users", log))
//	if err := mgr.LoadAll(app.Group("/api")); err != nil {
//	    return err
//	}
package loader
