// Package meta provides in-memory implementations of the strata
// collaborator interfaces: a metadata store holding table layouts, a
// connection factory backed by a registered set of physical tables, and a
// retain-counted client tying the two together.
//
// These implementations back tests and embedded deployments. Production
// deployments provide their own MetaStore and ConnectionFactory speaking
// to the real store.
//
//	store := meta.NewStore()
//	_ = store.PutLayout(userLayout)
//
//	conns := meta.NewConnectionFactory("strata.prod.table.users")
//	client := meta.NewClient("prod", store, conns)
//	defer client.Release()
package meta
