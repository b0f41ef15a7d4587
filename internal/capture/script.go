package capture

// MediaObserverScript is injected into every page before its own scripts
// run. It assigns each video element a page-local ID, reports play /
// loadedmetadata / src-assignment events through the CDP binding, and keeps
// watching the DOM for video elements added later.
const MediaObserverScript = `(function () {
  if (window.__videoAgentInstalled) return;
  window.__videoAgentInstalled = true;

  let counter = 1;
  const observed = new WeakSet();

  function emit(payload) {
    try {
      if (typeof window.` + BindingName + ` === "function") {
        window.` + BindingName + `(JSON.stringify(payload));
      }
    } catch (e) {}
  }

  function ensureId(el) {
    if (!el.dataset) return null;
    if (!el.dataset.vaId) {
      el.dataset.vaId = "va-" + counter++;
    }
    return el.dataset.vaId;
  }

  function registerVideo(el) {
    if (!el || observed.has(el)) return;
    observed.add(el);
    const id = ensureId(el);
    if (!id) return;

    el.addEventListener("play", () => {
      emit({ type: "play", id });
    });

    el.addEventListener("loadedmetadata", () => {
      emit({
        type: "meta",
        id,
        duration: Number.isFinite(el.duration) ? el.duration : null,
        currentSrc: el.currentSrc || el.src || null
      });
    });

    const src = el.currentSrc || el.src;
    if (src) {
      emit({ type: "src", id, url: src });
    }
  }

  function patchMediaSrc() {
    try {
      const desc = Object.getOwnPropertyDescriptor(HTMLMediaElement.prototype, "src");
      if (desc && desc.set) {
        Object.defineProperty(HTMLMediaElement.prototype, "src", {
          get() {
            return desc.get.call(this);
          },
          set(value) {
            const id = ensureId(this);
            if (id && value) {
              emit({ type: "src", id, url: String(value) });
            }
            return desc.set.call(this, value);
          }
        });
      }
    } catch (e) {}
  }

  function scanVideos() {
    document.querySelectorAll("video").forEach(registerVideo);
  }

  function observeVideos() {
    const observer = new MutationObserver((mutations) => {
      for (const mutation of mutations) {
        for (const node of mutation.addedNodes) {
          if (node && node.nodeType === 1) {
            if (node.tagName && node.tagName.toLowerCase() === "video") {
              registerVideo(node);
            } else if (node.querySelectorAll) {
              node.querySelectorAll("video").forEach(registerVideo);
            }
          }
        }
      }
    });
    observer.observe(document.documentElement || document.body, {
      childList: true,
      subtree: true
    });
  }

  patchMediaSrc();

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", () => {
      scanVideos();
      observeVideos();
    });
  } else {
    scanVideos();
    observeVideos();
  }
})();`
