// Package nav holds the route table, the authentication guard applied to
// every screen change, and the bus that carries navigation requests and
// user-visible notices from background work to the terminal UI.
package nav

// RouteName identifies a screen.
type RouteName string

const (
	Home          RouteName = "home"
	BookList      RouteName = "booklist"
	Book          RouteName = "book"
	CommentCreate RouteName = "comment-create"
	CommentUpdate RouteName = "comment-update"
	MyPage        RouteName = "mypage"
	Login         RouteName = "login"
	Register      RouteName = "register"
)

// Route is a navigation target. Params carries screen arguments such as the
// book or comment ID.
type Route struct {
	Name   RouteName
	Params map[string]string
}

// To builds a Route with optional key/value params.
func To(name RouteName, kv ...string) Route {
	r := Route{Name: name}
	if len(kv) >= 2 {
		r.Params = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			r.Params[kv[i]] = kv[i+1]
		}
	}
	return r
}

// Param returns the named param or "".
func (r Route) Param(key string) string { return r.Params[key] }

// Meta describes access rules for a route.
type Meta struct {
	RequiresAuth bool // only reachable when logged in
	AuthOnly     bool // only reachable when logged out
}

var table = map[RouteName]Meta{
	Home:          {},
	BookList:      {},
	Book:          {},
	CommentCreate: {RequiresAuth: true},
	CommentUpdate: {RequiresAuth: true},
	MyPage:        {RequiresAuth: true},
	Login:         {AuthOnly: true},
	Register:      {AuthOnly: true},
}

// Lookup returns the access rules for name. Unknown routes are public.
func Lookup(name RouteName) Meta { return table[name] }

// Known reports whether name is in the route table.
func Known(name RouteName) bool {
	_, ok := table[name]
	return ok
}

// Guard decides where a navigation to `to` actually lands.
func Guard(to Route, authenticated bool) Route {
	meta := Lookup(to.Name)
	switch {
	case meta.RequiresAuth && !authenticated:
		return Route{Name: Login}
	case meta.AuthOnly && authenticated:
		return Route{Name: Home}
	default:
		return to
	}
}
