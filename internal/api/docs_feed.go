package api

const docsFeedHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Video Sniffer Link Feed</title>
  <style>
    body { background: #0d1117; color: #c9d1d9; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0; padding: 32px; }
    main { max-width: 860px; margin: 0 auto; }
    h1 { color: #e6edf3; font-size: 24px; }
    h2 { color: #e6edf3; font-size: 18px; margin-top: 32px; border-bottom: 1px solid #30363d; padding-bottom: 6px; }
    code, pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; }
    code { padding: 1px 6px; }
    pre { padding: 12px 16px; overflow-x: auto; }
    table { border-collapse: collapse; width: 100%; font-size: 14px; }
    th, td { border: 1px solid #30363d; padding: 6px 10px; text-align: left; }
    th { background: #161b22; }
    a { color: #58a6ff; }
  </style>
</head>
<body>
<main>
  <h1>Link Feed WebSocket</h1>
  <p>Connect to <code>/ws/links</code> to receive a JSON event for every link the
  engine inserts or updates, across all sessions. The stream is push-only; any
  message sent by the client is ignored.</p>

  <h2>Event format</h2>
  <pre>{
  "type": "insert",
  "session_id": "7f62c1de-...",
  "link": {
    "url": "https://cdn.example.com/v/master.m3u8",
    "category": "hls",
    "display_label": "HLS",
    "meta": "12:04 | 1.2 GB",
    ...
  }
}</pre>

  <h2>Event types</h2>
  <table>
    <tr><th>Type</th><th>Meaning</th></tr>
    <tr><td><code>insert</code></td><td>A new link entered a session.</td></tr>
    <tr><td><code>update</code></td><td>An existing link gained metadata (manifest parse, size probe, duration propagation).</td></tr>
  </table>

  <h2>Link fields</h2>
  <p>The <code>link</code> object matches the REST representation returned by
  <code>GET /api/v1/sessions/{session_id}/links</code>: the raw URL, its category
  (<code>hls</code>, <code>hls-variant</code>, <code>dash</code>, <code>file</code>,
  <code>segment</code>, <code>blob</code>, <code>manifest</code>, <code>other</code>),
  the human label and formatted meta line, and any known duration, size, bandwidth,
  resolution, DRM/live flags, quality list, and probe score.</p>

  <h2>Delivery</h2>
  <p>Events are fanned out without blocking the engine. A slow subscriber drops
  events rather than stalling discovery, so treat the feed as a change signal and
  re-fetch session state over REST when exact contents matter.</p>

  <p><a href="/docs">← REST API docs</a></p>
</main>
</body>
</html>`
