package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/api"
)

// routeKind identifies a screen of the client.
type routeKind int

const (
	routeHome routeKind = iota
	routeAuth
	routeCatalog
	routeCourse
	routeEnrollment
	routeProfile
	routeAbout
	routeContact
	routeTerms
	routeLogs
)

// route is one entry of the navigation stack.
type route struct {
	kind   routeKind
	course api.Course // routeCourse, routeEnrollment
}

func (r route) path() string {
	switch r.kind {
	case routeAuth:
		return "/login"
	case routeCatalog:
		return "/courses"
	case routeCourse:
		return "/course/" + r.course.ID.String()
	case routeEnrollment:
		return "/enrollment?course=" + r.course.Title
	case routeProfile:
		return "/profile"
	case routeAbout:
		return "/about"
	case routeContact:
		return "/contact"
	case routeTerms:
		return "/terms"
	case routeLogs:
		return "/logs"
	default:
		return "/"
	}
}

func (r route) title() string {
	switch r.kind {
	case routeAuth:
		return "Account"
	case routeCatalog:
		return "Courses"
	case routeCourse:
		if r.course.Title != "" {
			return r.course.Title
		}
		return fmt.Sprintf("Course %s", r.course.ID)
	case routeEnrollment:
		return "Enrollment"
	case routeProfile:
		return "Profile"
	case routeAbout:
		return "About"
	case routeContact:
		return "Contact"
	case routeTerms:
		return "Terms"
	case routeLogs:
		return "Client log"
	default:
		return "Home"
	}
}

// current returns the route on top of the stack.
func (m Model) current() route {
	if len(m.routes) == 0 {
		return route{kind: routeHome}
	}
	return m.routes[len(m.routes)-1]
}

// push navigates to r and returns the command that loads it. Pushing the
// route already on top replaces it.
func (m *Model) push(r route) tea.Cmd {
	if top := m.current(); len(m.routes) > 0 && top.kind == r.kind && top.course.ID == r.course.ID {
		m.routes = m.routes[:len(m.routes)-1]
	}
	m.routes = append(m.routes, r)
	return m.enter()
}

// pop returns to the previous route. The home route is never popped.
func (m *Model) pop() tea.Cmd {
	if len(m.routes) <= 1 {
		return nil
	}
	m.routes = m.routes[:len(m.routes)-1]
	return m.enter()
}

// reset clears the stack down to home and pushes r.
func (m *Model) reset(r route) tea.Cmd {
	m.routes = []route{{kind: routeHome}}
	if r.kind == routeHome {
		return m.enter()
	}
	return m.push(r)
}

// enter bumps the generation, so results requested by the previous screen
// are discarded, and starts whatever the new screen loads on entry.
func (m *Model) enter() tea.Cmd {
	m.gen++
	m.modal = nil
	r := m.current()
	m.logger.Debug("navigate", "route", r.path(), "gen", m.gen)

	switch r.kind {
	case routeAuth:
		return m.auth.focus()
	case routeCatalog:
		return m.enterCatalog()
	case routeCourse:
		return m.enterCourse(r.course)
	case routeProfile:
		return m.enterProfile()
	case routeLogs:
		return m.enterLogs()
	}
	return nil
}
