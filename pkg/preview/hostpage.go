package preview

// hostPage is the page a browser loads. It embeds the artifact in a sandboxed
// iframe and relays the frame's postMessage traffic over the websocket; the
// frame itself never talks to the server directly.
const hostPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>pagewright preview</title>
<style>
  * { box-sizing: border-box; }
  body { margin: 0; display: flex; height: 100vh; font-family: system-ui, sans-serif; background: #0f172a; color: #e2e8f0; }
  #stage { flex: 1; display: flex; flex-direction: column; }
  #toolbar { display: flex; gap: 8px; align-items: center; padding: 8px 12px; background: #1e293b; font-size: 13px; }
  #toolbar button { background: #334155; color: #e2e8f0; border: 0; border-radius: 4px; padding: 4px 10px; cursor: pointer; }
  #toolbar button.active { background: #2563eb; }
  #selection { margin-left: auto; font-family: monospace; font-size: 12px; color: #93c5fd; }
  #frame { flex: 1; border: 0; background: #ffffff; }
  #panel { width: 320px; border-left: 1px solid #1e293b; overflow-y: auto; padding: 12px; font-size: 13px; }
  #panel .msg { margin-bottom: 10px; padding: 8px 10px; border-radius: 6px; }
  #panel .msg-user { background: #1d4ed8; }
  #panel .msg-assistant { background: #1e293b; }
  #panel .badge { display: inline-block; margin-top: 4px; font-size: 10px; background: #334155; border-radius: 3px; padding: 1px 6px; }
  #panel .chip { display: inline-block; margin: 4px 4px 0 0; font-size: 11px; background: #0ea5e9; border-radius: 10px; padding: 2px 8px; }
</style>
</head>
<body>
  <div id="stage">
    <div id="toolbar">
      <button id="btn-edit" class="active">Edit</button>
      <button id="btn-interactive">Interactive</button>
      <span id="selection"></span>
    </div>
    <iframe id="frame" src="/frame" sandbox="__SANDBOX__"></iframe>
  </div>
  <div id="panel"></div>
<script>
(function () {
  var frame = document.getElementById("frame");
  var selection = document.getElementById("selection");
  var panel = document.getElementById("panel");
  var ws;

  function connect() {
    ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function (e) {
      var msg = JSON.parse(e.data);
      switch (msg.type) {
        case "frame":
          frame.contentWindow.postMessage(msg.data, "*");
          break;
        case "document_changed":
          frame.src = "/frame?t=" + Date.now();
          break;
        case "selection_changed":
          selection.textContent = (msg.data && msg.data.selector) || "";
          break;
        case "proposal_staged":
        case "proposal_resolved":
          refreshMessages();
          break;
      }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }

  function send(type, data) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({ type: type, data: data || {} }));
    }
  }

  window.addEventListener("message", function (e) {
    var msg = e.data || {};
    if (typeof msg.type === "string" && msg.type.indexOf("pw:") === 0) {
      if (msg.type === "pw:selected") {
        selection.textContent = msg.data && msg.data.selector ? msg.data.selector : "";
      }
      if (msg.type === "pw:cleared") {
        selection.textContent = "";
      }
      send(msg.type, msg.data);
    }
  });

  function setMode(mode) {
    fetch("/api/mode", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ mode: mode })
    });
    document.getElementById("btn-edit").classList.toggle("active", mode === "edit");
    document.getElementById("btn-interactive").classList.toggle("active", mode === "interactive");
  }
  document.getElementById("btn-edit").onclick = function () { setMode("edit"); };
  document.getElementById("btn-interactive").onclick = function () { setMode("interactive"); };

  function refreshMessages() {
    fetch("/api/messages").then(function (r) { return r.text(); }).then(function (html) {
      panel.innerHTML = html;
      panel.scrollTop = panel.scrollHeight;
    });
  }

  connect();
  refreshMessages();
  setInterval(refreshMessages, 5000);
})();
</script>
</body>
</html>`
