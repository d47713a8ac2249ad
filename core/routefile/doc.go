// Package routefile reads route tables from YAML or TOML documents.
//
// Components are referred to by name and looked up in a component.Registry.
// Routes resolved at navigation time name a strategy registered with
// WithStrategy.
//
//	routes:
//	  - id: users
//	    path: users
//	    component: user-list
//	    title: Users
//	    children:
//	      - path: [":id", ":id/profile"]
//	        component: user-detail
//	  - path: ""
//	    redirect_to: users
//
// Load picks the decoder from the file extension:
//
//	reg, _ := component.NewRegistry(userList, userDetail)
//	routes, err := routefile.Load("routes.yaml", reg)
//	if err != nil {
//		return err
//	}
//	r, err := router.New(app, routes)
package routefile
