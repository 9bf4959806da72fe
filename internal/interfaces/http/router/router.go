package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its handlers on a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// routeLister is implemented by registrars that can describe their routes
type routeLister interface {
	Routes(base string) []RouteInfo
}

// Router mounts domain groups under /api/<version>. Middleware added with Use
// applies to the API only, never to routes registered on the engine itself.
type Router struct {
	engine     *gin.Engine
	version    string
	chain      gin.HandlersChain
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) BasePath() string {
	return path.Join("/api", r.version)
}

func (r *Router) Use(handlers ...gin.HandlerFunc) *Router {
	r.chain = append(r.chain, handlers...)
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar and returns the routes of those that can
// list them, in registration order.
func (r *Router) Setup() []RouteInfo {
	base := r.BasePath()
	api := r.engine.Group(base, r.chain...)

	var mounted []RouteInfo
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
		if l, ok := reg.(routeLister); ok {
			mounted = append(mounted, l.Routes(base)...)
		}
	}
	return mounted
}

// RouteInfo describes one mounted endpoint
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

type endpoint struct {
	method   string
	path     string
	handlers gin.HandlersChain
}

// DomainGroup gathers the endpoints of one area of the API (orders, print,
// users...) so they can be declared before the engine exists.
type DomainGroup struct {
	name      string
	prefix    string
	chain     gin.HandlersChain
	endpoints []endpoint
	children  []*DomainGroup
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (g *DomainGroup) Name() string   { return g.name }
func (g *DomainGroup) Prefix() string { return g.prefix }

// Use appends middleware for this group and its children
func (g *DomainGroup) Use(handlers ...gin.HandlerFunc) *DomainGroup {
	g.chain = append(g.chain, handlers...)
	return g
}

func (g *DomainGroup) add(method, relative string, handlers []gin.HandlerFunc) *DomainGroup {
	g.endpoints = append(g.endpoints, endpoint{method: method, path: relative, handlers: handlers})
	return g
}

func (g *DomainGroup) GET(relative string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodGet, relative, handlers)
}

func (g *DomainGroup) POST(relative string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPost, relative, handlers)
}

func (g *DomainGroup) PUT(relative string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPut, relative, handlers)
}

func (g *DomainGroup) PATCH(relative string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPatch, relative, handlers)
}

func (g *DomainGroup) DELETE(relative string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodDelete, relative, handlers)
}

// Group nests a child under this group's prefix. The child runs after the
// parent's middleware.
func (g *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

func (g *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	mounted := rg.Group(g.prefix, g.chain...)
	for _, e := range g.endpoints {
		mounted.Handle(e.method, e.path, e.handlers...)
	}
	for _, child := range g.children {
		child.RegisterRoutes(mounted)
	}
}

// Routes lists own endpoints first, then those of children, with paths
// resolved against base.
func (g *DomainGroup) Routes(base string) []RouteInfo {
	prefix := path.Join(base, g.prefix)
	out := make([]RouteInfo, 0, len(g.endpoints))
	for _, e := range g.endpoints {
		full := prefix
		if e.path != "" && e.path != "/" {
			full = path.Join(prefix, e.path)
		}
		out = append(out, RouteInfo{Group: g.name, Method: e.method, Path: full})
	}
	for _, child := range g.children {
		out = append(out, child.Routes(prefix)...)
	}
	return out
}
