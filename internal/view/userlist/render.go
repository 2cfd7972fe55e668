package userlist

import (
	"html/template"
	"io"

	"userlist/internal/domain/entities"
)

const LoadingPlaceholder = `<p class="loading">Loading...</p>`

var listTemplate = template.Must(template.New("userlist").Parse(
	`{{if .Loading}}` + LoadingPlaceholder + `{{else}}<ul class="user-list" data-status="{{.Status}}">` +
		`{{range .Users}}<li data-key="{{.ID}}">{{.Name}}</li>{{end}}</ul>{{end}}`))

type snapshot struct {
	Loading bool
	Status  Status
	Users   []entities.User
}

// Render writes the placeholder while loading, otherwise the ordered list
// keyed by user id. Rendering never triggers a fetch.
func (v *View) Render(w io.Writer) error {
	v.mu.Lock()
	snap := snapshot{
		Loading: v.loading,
		Status:  v.status,
		Users:   v.users,
	}
	v.mu.Unlock()

	return listTemplate.Execute(w, snap)
}
