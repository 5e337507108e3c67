// Package serve exposes the zarr serving core over HTTP. Routing follows
// the Zarr v2 store-on-HTTP convention: metadata documents answer under the
// ".zgroup", ".zarray" and ".zattrs" path suffixes, everything else is a
// virtual directory listing or a binary block addressed by the "block"
// query parameter.
package serve

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"

	zarr "github.com/datatrellis/zarr-serve"
)

// Handler answers the four read-only request shapes of the wire protocol.
// It holds no mutable state; every request rebuilds its documents from the
// live structure description, so concurrent requests need no coordination.
type Handler struct {
	log      *logger.L
	resolver zarr.Resolver
	codec    zarr.Codec
}

var _ http.Handler = (*Handler)(nil)

// New builds a handler around an entry resolver and a block codec. A nil
// codec selects the default.
func New(resolver zarr.Resolver, codec zarr.Codec) *Handler {
	if codec == nil {
		codec = zarr.NewCodec(zarr.DefaultCodecSpec)
	}
	return &Handler{
		log:      logger.New("zarr-serve"),
		resolver: resolver,
		codec:    codec,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	rid := uuid.New().String()[:8]
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, string(zarr.MTGroup)):
		h.groupMarker(w, r, rid, trimMetaSuffix(path, zarr.MTGroup))
	case strings.HasSuffix(path, string(zarr.MTArray)):
		h.arrayDescriptor(w, r, rid, trimMetaSuffix(path, zarr.MTArray))
	case strings.HasSuffix(path, string(zarr.MTAttributes)):
		h.attributes(w, r, rid, trimMetaSuffix(path, zarr.MTAttributes))
	default:
		h.listingOrBlock(w, r, rid, path)
	}
}

// groupMarker answers ".zgroup". Group-like entries get the fixed marker;
// anything else gets not-found, which tells the client to try ".zarray".
func (h *Handler) groupMarker(w http.ResponseWriter, r *http.Request, rid, path string) {
	entry, ok := h.resolve(w, r, rid, path)
	if !ok {
		return
	}
	if zarr.Classify(entry.Kind(), dataTypeOf(entry)) != zarr.RoleGroupLike {
		h.log.Debugf("[%s] %s entry %q declines group metadata", rid, entry.Kind(), path)
		sendNotFound(w)
		return
	}
	h.sendJSON(w, rid, zarr.GroupMarker)
}

// arrayDescriptor answers ".zarray" for primitive arrays and sparse
// arrays. Group-like entries, structured arrays included, get not-found so
// the client retries ".zgroup".
func (h *Handler) arrayDescriptor(w http.ResponseWriter, r *http.Request, rid, path string) {
	entry, ok := h.resolve(w, r, rid, path)
	if !ok {
		return
	}
	if zarr.Classify(entry.Kind(), dataTypeOf(entry)) != zarr.RoleArrayLike {
		h.log.Debugf("[%s] %s entry %q declines array metadata", rid, entry.Kind(), path)
		sendNotFound(w)
		return
	}

	ae, ok := entry.(zarr.ArrayEntry)
	if !ok {
		h.log.Errorf("[%s] array-like entry %q has no structure", rid, path)
		sendInternalServerError(w, "entry does not describe its structure")
		return
	}
	st := ae.Structure()
	meta, err := zarr.BuildArrayMeta(st.Shape, st.Chunks, st.Dtype, h.codec.Spec())
	if err != nil {
		h.log.Errorf("[%s] cannot build array metadata for %q: %s", rid, path, err)
		sendInternalServerError(w, err.Error())
		return
	}
	h.sendJSON(w, rid, meta)
}

// attributes answers ".zattrs" for group-like entries with the entry's
// metadata mapping, empty when it exposes none.
func (h *Handler) attributes(w http.ResponseWriter, r *http.Request, rid, path string) {
	entry, ok := h.resolve(w, r, rid, path)
	if !ok {
		return
	}
	if zarr.Classify(entry.Kind(), dataTypeOf(entry)) != zarr.RoleGroupLike {
		h.log.Debugf("[%s] %s entry %q declines attributes", rid, entry.Kind(), path)
		sendNotFound(w)
		return
	}
	md := entry.Metadata()
	if md == nil {
		md = zarr.Attributes{}
	}
	h.sendJSON(w, rid, md)
}

// listingOrBlock answers the bare entry URL: a child listing for
// group-like entries, a binary block (or the reserved placeholder) for
// array-like ones.
func (h *Handler) listingOrBlock(w http.ResponseWriter, r *http.Request, rid, path string) {
	entry, ok := h.resolve(w, r, rid, path)
	if !ok {
		return
	}

	switch zarr.Classify(entry.Kind(), dataTypeOf(entry)) {
	case zarr.RoleGroupLike:
		urls, err := zarr.ChildURLs(r.Context(), requestURL(r), entry)
		if err != nil {
			h.fail(w, rid, path, err)
			return
		}
		h.sendJSON(w, rid, urls)

	case zarr.RoleArrayLike:
		block := r.URL.Query().Get("block")
		if block == "" {
			// whole-array requests are reserved; answer an empty object
			// placeholder for forward compatibility
			h.sendJSON(w, rid, struct{}{})
			return
		}
		coord, err := zarr.ParseBlockCoord(block)
		if err != nil {
			h.fail(w, rid, path, err)
			return
		}
		ae, ok := entry.(zarr.ArrayEntry)
		if !ok {
			h.log.Errorf("[%s] array-like entry %q has no reader", rid, path)
			sendInternalServerError(w, "entry does not read slices")
			return
		}
		buf, err := zarr.FetchBlock(r.Context(), ae, coord, h.codec)
		if err != nil {
			h.fail(w, rid, path, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf); err != nil {
			h.log.Warnf("[%s] writing block [%s] of %q: %s", rid, coord, path, err)
		}

	default:
		sendNotFound(w)
	}
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, rid, path string) (zarr.Entry, bool) {
	entry, err := h.resolver.Resolve(r.Context(), path)
	if err != nil {
		h.fail(w, rid, path, err)
		return nil, false
	}
	return entry, true
}

// fail maps the error taxonomy onto protocol statuses. Status and body are
// decided here, before anything is written; no response is ever partially
// emitted.
func (h *Handler) fail(w http.ResponseWriter, rid, path string, err error) {
	switch {
	case errors.Is(err, zarr.ErrNotFound), errors.Is(err, zarr.ErrNotApplicable):
		h.log.Debugf("[%s] %q: %s", rid, path, err)
		sendNotFound(w)
	case errors.Is(err, zarr.ErrInvalidBlock):
		h.log.Infof("[%s] %q: %s", rid, path, err)
		sendBadRequest(w, err.Error())
	default:
		h.log.Errorf("[%s] %q: %s", rid, path, err)
		sendInternalServerError(w, err.Error())
	}
}

func (h *Handler) sendJSON(w http.ResponseWriter, rid string, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log.Errorf("[%s] marshaling response: %s", rid, err)
		sendInternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// dataTypeOf pulls the element type used for classification; entries
// without an array structure classify on the zero DataType.
func dataTypeOf(entry zarr.Entry) zarr.DataType {
	if ae, ok := entry.(zarr.ArrayEntry); ok {
		return ae.Structure().Dtype
	}
	return zarr.DataType{}
}

// trimMetaSuffix strips a metadata key suffix and any separating slash,
// leaving the entry path. Both "/foo/.zgroup" and "/foo.zgroup" address
// the entry "foo"; the root group answers at "/.zgroup".
func trimMetaSuffix(path string, mt zarr.MetaType) string {
	path = strings.TrimSuffix(path, string(mt))
	return strings.TrimRight(path, "/")
}

// requestURL reconstructs the absolute request URL without its query
// string; listings concatenate child names onto it.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
