// Package config loads lego project configuration.
//
// The configuration lives in lego.yaml (or lego.yml, lego.json, lego.toml)
// at the project root. Every scalar key can be overridden from the
// environment with the LEGO_ prefix, dots becoming underscores:
// LEGO_SERVER_ADDR, LEGO_LOADER_URL.
//
// # Configuration File Structure
//
//	name: todo
//	components: components
//	page: index.html
//	syntax: brackets
//	styles:
//	  base: styles/base.css
//	routes:
//	  - path: /
//	    component: todo-home
//	  - path: /users/:id
//	    component: user-page
//	    require: [user]
//	loader:
//	  url: https://cdn.example.com/components/
//	  timeout: 5s
//	server:
//	  addr: :8080
//	  metrics: true
//	  live: true
//	monitoring:
//	  slow_render: 16ms
//	  log: true
//
// # Usage
//
//	cfg, err := config.LoadOrDefaults(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Components:", cfg.ComponentsPath())
package config
