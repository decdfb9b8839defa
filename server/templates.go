package server

const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sign in | {{.AppName}}</title>
</head>
<body>
<h1>{{.AppName}}</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="{{.Action}}">
<input type="hidden" name="callbackUrl" value="{{.CallbackURL}}">
<label>Username <input name="username" autocomplete="username" required></label>
<label>Password <input name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
</form>
{{range .Providers}}<p><a href="{{.SignInURL}}">Sign in with {{.ID}}</a></p>
{{end}}</body>
</html>
`

const homePageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.AppName}}</title>
</head>
<body>
<p>Signed in as {{.DisplayName}}</p>
<form method="post" action="{{.SignOut}}"><button type="submit">Sign out</button></form>
</body>
</html>
`
