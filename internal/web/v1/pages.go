package v1

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/pos-service/internal/logger"
	"github.com/duynhne/pos-service/middleware"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<form id="login" method="post" action="{{.LoginURL}}">
  <input name="username" placeholder="Username" autocomplete="username" required>
  <input name="password" type="password" placeholder="Password" autocomplete="current-password" required>
  <button type="submit">Sign in</button>
</form>
<script>
document.getElementById("login").addEventListener("submit", async (e) => {
  e.preventDefault();
  const f = new FormData(e.target);
  const res = await fetch(e.target.action, {
    method: "POST",
    headers: {"Content-Type": "application/json", "Accept": "application/json"},
    body: JSON.stringify({username: f.get("username"), password: f.get("password")}),
  });
  if (res.ok) { window.location = "/"; }
});
</script>
</body>
</html>
`))

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.CSRFToken}}">
<title>Front desk</title>
</head>
<body>
<p>Signed in as {{.Username}} ({{.Role}})</p>
</body>
</html>
`))

// LoginPage renders the sign-in form. It is the redirect target of the auth gate.
func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, loginPage, gin.H{"LoginURL": "/api/v1/auth/login"})
}

// Dashboard renders the front-desk page for the signed-in user.
func (h *Handler) Dashboard(c *gin.Context) {
	sess, _ := middleware.SessionFromContext(c)
	h.render(c, dashboardPage, gin.H{
		"Username":  sess.Username,
		"Role":      string(sess.Role),
		"CSRFToken": sess.CSRFToken,
	})
}

func (h *Handler) render(c *gin.Context, tmpl *template.Template, data gin.H) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := tmpl.Execute(c.Writer, data); err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("template", tmpl.Name()).Msg("Render page failed")
	}
}
