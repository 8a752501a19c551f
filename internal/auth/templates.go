package auth

const pageCSS = `
        :root {
            --bg: #f6f7f9;
            --card: #ffffff;
            --text: #1f2933;
            --text-muted: #616e7c;
            --accent: #00b3e6;
            --error: #d64545;
            --success: #2f9e44;
        }
        * { box-sizing: border-box; }
        body {
            margin: 0;
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
        }
        .card {
            width: 100%;
            max-width: 420px;
            padding: 2rem;
            border-radius: 12px;
            background: var(--card);
            box-shadow: 0 8px 24px rgba(15, 23, 42, 0.08);
        }
        h1 { font-size: 1.375rem; margin: 0 0 0.25rem; }
        p.lead { margin: 0 0 1.5rem; color: var(--text-muted); font-size: 0.9375rem; }
        label { display: block; font-size: 0.8125rem; font-weight: 600; margin-bottom: 0.375rem; }
        input {
            width: 100%;
            padding: 0.625rem 0.75rem;
            margin-bottom: 1rem;
            border: 1px solid #cbd2d9;
            border-radius: 8px;
            font-size: 0.9375rem;
        }
        input:focus { outline: none; border-color: var(--accent); }
        .actions { display: flex; gap: 0.75rem; }
        button {
            flex: 1;
            padding: 0.625rem;
            border: 1px solid var(--accent);
            border-radius: 8px;
            font-size: 0.9375rem;
            cursor: pointer;
            background: #fff;
            color: var(--accent);
        }
        button.primary { background: var(--accent); color: #fff; }
        button:disabled { opacity: 0.6; cursor: default; }
        .status { min-height: 1.5rem; margin-top: 1rem; font-size: 0.875rem; }
        .status.error { color: var(--error); }
        .status.ok { color: var(--success); }
`

const setupTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>HelloSign CLI - Sign in</title>
    <style>` + pageCSS + `</style>
</head>
<body>
    <div class="card">
        <h1>Sign in to HelloSign</h1>
        <p class="lead">Your credentials are stored in the system keychain by the hs CLI.</p>
        <form id="setup">
            <label for="email">Email address</label>
            <input id="email" name="email_address" type="email" autocomplete="username" required autofocus>
            <label for="password">Password</label>
            <input id="password" name="password" type="password" autocomplete="current-password" required>
            <div class="actions">
                <button type="button" id="test">Test</button>
                <button type="submit" class="primary" id="save">Save</button>
            </div>
            <div class="status" id="status"></div>
        </form>
    </div>
    <script>
        const csrfToken = "{{.CSRFToken}}";
        const form = document.getElementById('setup');
        const statusEl = document.getElementById('status');

        function setStatus(text, cls) {
            statusEl.textContent = text;
            statusEl.className = 'status ' + (cls || '');
        }

        function payload() {
            return JSON.stringify({
                email_address: document.getElementById('email').value,
                password: document.getElementById('password').value
            });
        }

        async function post(path) {
            const response = await fetch(path, {
                method: 'POST',
                headers: {
                    'Content-Type': 'application/json',
                    'X-CSRF-Token': csrfToken
                },
                body: payload()
            });
            return response.json();
        }

        function busy(on) {
            document.getElementById('test').disabled = on;
            document.getElementById('save').disabled = on;
        }

        document.getElementById('test').addEventListener('click', async () => {
            busy(true);
            setStatus('Checking...');
            try {
                const result = await post('/validate');
                if (result.success) {
                    setStatus('Signed in as ' + result.email_address, 'ok');
                } else {
                    setStatus(result.error, 'error');
                }
            } catch (e) {
                setStatus('Request failed: ' + e, 'error');
            }
            busy(false);
        });

        form.addEventListener('submit', async (event) => {
            event.preventDefault();
            busy(true);
            setStatus('Saving...');
            try {
                const result = await post('/submit');
                if (result.success) {
                    window.location.href = '/success?email=' + encodeURIComponent(result.email_address);
                    return;
                }
                setStatus(result.error, 'error');
            } catch (e) {
                setStatus('Request failed: ' + e, 'error');
            }
            busy(false);
        });
    </script>
</body>
</html>`

const successTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>HelloSign CLI - Signed in</title>
    <style>` + pageCSS + `</style>
</head>
<body>
    <div class="card">
        <h1>You're signed in</h1>
        <p class="lead">Credentials for <strong>{{.EmailAddress}}</strong> were saved. You can close this tab and return to the terminal.</p>
    </div>
    <script>
        fetch('/complete', { method: 'POST' }).catch(() => {});
    </script>
</body>
</html>`
