package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"portalgate/internal/samlvalidator"
	"portalgate/internal/session"
	"portalgate/internal/slo"
	dErrors "portalgate/pkg/domain-errors"
	"portalgate/pkg/platform/audit"
	"portalgate/pkg/platform/sentinel"
)

// Logout terminates the caller's own session. The store delete must land
// before the response goes out: a logout the user believes happened but did
// not is worse than a failed one, so a second attempt is made and a failure
// after that surfaces as an error. The logout-token index entry is left in
// place; the single-logout path reconciles stale entries when it meets them.
func (s *Service) Logout(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if !sess.Authenticated() {
		return nil
	}

	if err := s.destroyWithRetry(ctx, sess.ID); err != nil {
		logoutsTotal.WithLabelValues("local_failed").Inc()
		return dErrors.Wrap(dErrors.CodeUnavailable, "logout could not be completed", err)
	}

	logoutsTotal.WithLabelValues("local").Inc()
	subjectID := ""
	if sess.Principal != nil {
		subjectID = sess.Principal.SubjectID
	}
	s.emit(ctx, audit.EventSessionDestroyed, sess.ID, subjectID, "local_logout")
	return nil
}

// HandleSLO processes an IdP-initiated logout request on either binding and
// returns the redirect acknowledging it, when one can be addressed.
//
// A verified request resolves its federation identity through the logout
// token index. A malformed or unverifiable one falls back to the session the
// request rode in on, if any; terminating a session its own browser asked to
// end is safe even when the message is not. Unknown identities are a benign
// no-op, since the session may simply have expired first.
func (s *Service) HandleSLO(ctx context.Context, r *http.Request) (*url.URL, error) {
	result := s.saml.ValidateLogoutRequest(r)

	var key *session.FederationKey
	switch result.Status {
	case samlvalidator.StatusVerified:
		key = &session.FederationKey{NameID: result.Profile.NameID, SessionIndex: result.Profile.SessionIndex}
	default:
		s.logger.WarnContext(ctx, "unusable logout request, falling back to requesting session",
			"status", string(result.Status), "reason", result.Reason)
		if sess := session.FromContext(ctx); sess.Authenticated() && sess.FederationKey != nil {
			key = sess.FederationKey
			s.emit(ctx, audit.EventSLOFallbackCleanup, sess.ID, sess.FederationKey.NameID, result.Reason)
		}
	}

	if key == nil {
		sloTotal.WithLabelValues("no_target").Inc()
		return s.logoutResponse(ctx, result.RequestID, relayState(r))
	}

	if err := s.terminateFederatedSession(ctx, *key); err != nil {
		return nil, err
	}
	return s.logoutResponse(ctx, result.RequestID, relayState(r))
}

// terminateFederatedSession resolves a federation identity through the index
// and destroys the session it points at.
func (s *Service) terminateFederatedSession(ctx context.Context, ref session.FederationKey) error {
	indexKey := slo.ComputeKey(ref.NameID, ref.SessionIndex)

	sessionID, err := s.index.Lookup(ctx, indexKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		sloTotal.WithLabelValues("unknown").Inc()
		s.emit(ctx, audit.EventSLOUnknownSession, "", ref.NameID, "no index entry")
		return nil
	}
	if err != nil {
		sloTotal.WithLabelValues("index_error").Inc()
		return dErrors.Wrap(dErrors.CodeUnavailable, "logout could not be completed", err)
	}

	if err := s.destroyWithRetry(ctx, sessionID); err != nil {
		sloTotal.WithLabelValues("store_error").Inc()
		return dErrors.Wrap(dErrors.CodeUnavailable, "logout could not be completed", err)
	}

	// The entry may already be stale (session expired on its own); deleting
	// it reconciles the index either way.
	if err := s.index.Delete(ctx, indexKey); err != nil {
		s.logger.WarnContext(ctx, "could not remove logout index entry", "error", err)
	}

	sloTotal.WithLabelValues("completed").Inc()
	s.emit(ctx, audit.EventSLOCompleted, sessionID, ref.NameID, "")
	logoutsTotal.WithLabelValues("slo").Inc()
	return nil
}

// destroyWithRetry deletes a session record, retrying once. Used on paths
// where the delete must be confirmed before responding.
func (s *Service) destroyWithRetry(ctx context.Context, sessionID string) error {
	err := s.sessions.Destroy(ctx, sessionID)
	if err == nil {
		return nil
	}
	s.logger.WarnContext(ctx, "session destroy failed, retrying", "error", err)
	return s.sessions.Destroy(ctx, sessionID)
}

// logoutResponse builds the redirect acknowledging a logout request. Without
// a request id there is nothing to address it to and the caller falls back
// to a plain redirect.
func (s *Service) logoutResponse(ctx context.Context, requestID, relayState string) (*url.URL, error) {
	if requestID == "" {
		return nil, nil
	}
	redirect, err := s.saml.LogoutResponseURL(requestID, relayState)
	if err != nil {
		s.logger.WarnContext(ctx, "could not build logout response", "error", err)
		return nil, nil
	}
	return redirect, nil
}

// relayState reads RelayState from whichever binding carried the request.
func relayState(r *http.Request) string {
	if v := r.URL.Query().Get("RelayState"); v != "" {
		return v
	}
	return r.PostFormValue("RelayState")
}
