package bundle

// Interaction modes of the rendered preview.
const (
	ModeEdit        = "edit"
	ModeInteractive = "interactive"
)

// SandboxAttr is the sandbox attribute every surface embedding an artifact
// must put on its iframe: scripts, same-origin, forms and modals work, while
// top navigation and popups are denied so generated code stays inside the
// preview.
const SandboxAttr = "allow-scripts allow-same-origin allow-forms allow-modals"

// Frame-to-host and host-to-frame message types. The embedded context is
// untrusted; the host only ever speaks this narrow vocabulary with it.
const (
	MsgReady          = "pw:ready"
	MsgSelected       = "pw:selected"
	MsgCleared        = "pw:cleared"
	MsgError          = "pw:error"
	MsgUpdateResult   = "pw:update-result"
	MsgSetMode        = "pw:set-mode"
	MsgUpdate         = "pw:update"
	MsgClearSelection = "pw:clear-selection"
)

// errorOverlayScript renders script failures as a visible in-page banner so a
// broken generation never fails silently. Injected into synthesized shells
// and forwarded to the host from every artifact via the instrumentation.
const errorOverlayScript = `
(function () {
  function showError(message) {
    var bar = document.getElementById("__pw_error_bar");
    if (!bar) {
      bar = document.createElement("div");
      bar.id = "__pw_error_bar";
      bar.style.cssText = "position:fixed;left:0;right:0;bottom:0;z-index:2147483646;" +
        "background:#7f1d1d;color:#fecaca;font:12px/1.5 monospace;padding:8px 12px;" +
        "white-space:pre-wrap;max-height:40%;overflow:auto;";
      document.body.appendChild(bar);
    }
    var line = document.createElement("div");
    line.textContent = message;
    bar.appendChild(line);
  }
  window.addEventListener("error", function (e) {
    showError("Error: " + e.message + (e.filename ? " (" + e.filename + ":" + e.lineno + ")" : ""));
  });
  window.addEventListener("unhandledrejection", function (e) {
    showError("Unhandled rejection: " + (e.reason && e.reason.message ? e.reason.message : String(e.reason)));
  });
})();
`

// instrumentationScript is the frame half of the host contract: hover and
// selection handling in edit mode, click gating in interactive mode, and the
// selector-addressed update endpoint. It deliberately avoids template
// literals so the whole payload stays inside one Go raw string.
const instrumentationScript = `
(function () {
  var mode = "__MODE__";
  var hovered = null;
  var pinned = null;

  var HOVER_OUTLINE = "2px dashed #3b82f6";
  var PIN_OUTLINE = "2px solid #2563eb";

  function post(type, data) {
    if (window.parent && window.parent !== window) {
      window.parent.postMessage({ type: type, data: data || {} }, "*");
    }
  }

  function selectorFor(el) {
    if (!el || el.nodeType !== 1) return "";
    if (el.id) return "#" + el.id;
    var parts = [];
    var node = el;
    while (node && node.nodeType === 1 && node !== document.body && node !== document.documentElement) {
      var tag = node.tagName.toLowerCase();
      var index = 1;
      var sib = node.previousElementSibling;
      while (sib) {
        if (sib.tagName === node.tagName) index++;
        sib = sib.previousElementSibling;
      }
      parts.unshift(tag + ":nth-of-type(" + index + ")");
      if (node.parentElement && node.parentElement.id) {
        parts.unshift("#" + node.parentElement.id);
        break;
      }
      node = node.parentElement;
    }
    return parts.join(" > ");
  }

  function describe(el) {
    var attributes = {};
    for (var i = 0; i < el.attributes.length; i++) {
      var a = el.attributes[i];
      attributes[a.name] = a.value;
    }
    var computed = window.getComputedStyle(el);
    var styles = {};
    var keep = ["color", "background-color", "font-size", "font-family", "font-weight",
      "display", "margin", "padding", "text-align", "border-radius"];
    for (var j = 0; j < keep.length; j++) {
      styles[keep[j]] = computed.getPropertyValue(keep[j]);
    }
    var text = (el.textContent || "").trim();
    if (text.length > 300) text = text.slice(0, 300);
    return {
      selector: selectorFor(el),
      tagName: el.tagName.toLowerCase(),
      textContent: text,
      attributes: attributes,
      styles: styles
    };
  }

  function clearHover() {
    if (hovered && hovered !== pinned) hovered.style.outline = "";
    hovered = null;
  }

  function clearPin() {
    if (pinned) pinned.style.outline = "";
    pinned = null;
  }

  function isInteractive(el) {
    while (el && el.nodeType === 1) {
      var tag = el.tagName.toLowerCase();
      if (tag === "a" || tag === "button" || tag === "input" ||
          tag === "select" || tag === "textarea" || tag === "label" ||
          el.hasAttribute("data-intent")) {
        return true;
      }
      el = el.parentElement;
    }
    return false;
  }

  document.addEventListener("mouseover", function (e) {
    if (mode !== "edit") return;
    clearHover();
    var el = e.target;
    if (el === document.body || el === document.documentElement) return;
    if (el.id === "__pw_error_bar" || (el.closest && el.closest("#__pw_error_bar"))) return;
    hovered = el;
    if (hovered !== pinned) hovered.style.outline = HOVER_OUTLINE;
  }, true);

  document.addEventListener("mouseout", function () {
    if (mode !== "edit") return;
    clearHover();
  }, true);

  document.addEventListener("click", function (e) {
    if (mode === "edit") {
      e.preventDefault();
      e.stopPropagation();
      var el = e.target;
      if (el === document.body || el === document.documentElement) {
        clearPin();
        post("pw:cleared", {});
        return;
      }
      clearPin();
      pinned = el;
      pinned.style.outline = PIN_OUTLINE;
      post("pw:selected", describe(el));
      return;
    }
    // Interactive mode: real controls behave naturally, stray clicks are
    // swallowed so a preview poke never navigates anywhere.
    if (!isInteractive(e.target)) {
      e.preventDefault();
      e.stopPropagation();
    }
  }, true);

  document.addEventListener("keydown", function (e) {
    if (e.key === "Escape" && mode === "edit") {
      clearPin();
      post("pw:cleared", {});
    }
  });

  function applyUpdate(data) {
    var el;
    try {
      el = document.querySelector(data.selector);
    } catch (err) {
      el = null;
    }
    if (!el) {
      post("pw:update-result", { selector: data.selector, ok: false });
      return;
    }
    var updates = data.updates || {};
    if (typeof updates.textContent === "string") {
      el.textContent = updates.textContent;
    }
    if (updates.attributes) {
      for (var name in updates.attributes) {
        if (name === "style") continue;
        el.setAttribute(name, updates.attributes[name]);
      }
    }
    if (updates.styles) {
      for (var prop in updates.styles) {
        el.style.setProperty(prop, updates.styles[prop]);
      }
    }
    post("pw:update-result", { selector: data.selector, ok: true });
  }

  window.addEventListener("message", function (e) {
    var msg = e.data || {};
    switch (msg.type) {
      case "pw:set-mode":
        mode = msg.data && msg.data.mode === "interactive" ? "interactive" : "edit";
        clearHover();
        if (mode !== "edit") clearPin();
        break;
      case "pw:update":
        applyUpdate(msg.data || {});
        break;
      case "pw:clear-selection":
        clearPin();
        break;
    }
  });

  window.addEventListener("error", function (e) {
    post("pw:error", { message: e.message, line: e.lineno });
  });

  post("pw:ready", { mode: mode });
})();
`
