package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"go.uber.org/mock/gomock"

	"portalgate/internal/samlvalidator"
	"portalgate/internal/session"
	dErrors "portalgate/pkg/domain-errors"
	"portalgate/pkg/platform/audit"
	"portalgate/pkg/platform/sentinel"
)

func (s *AuthServiceSuite) activeSession() *session.Session {
	return &session.Session{
		ID:            "sid-1",
		Principal:     &session.Principal{SubjectID: "U1", SessionType: "citizen"},
		FederationKey: &session.FederationKey{NameID: "U1", SessionIndex: "S1"},
	}
}

func (s *AuthServiceSuite) sloRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/saml/slo?SAMLRequest=x&RelayState=rs", nil)
	return req.WithContext(s.ctx())
}

// =============================================================================
// Local Logout Tests
// =============================================================================

func (s *AuthServiceSuite) TestLogout() {
	s.Run("destroys session and audits", func() {
		s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").Return(nil)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, event audit.Event) error {
				s.Equal(string(audit.EventSessionDestroyed), event.Action)
				s.Equal("local_logout", event.Reason)
				return nil
			})

		s.NoError(s.service.Logout(s.ctxWithSession(s.activeSession())))
	})

	s.Run("anonymous logout is a no-op", func() {
		s.NoError(s.service.Logout(s.ctx()))
	})

	s.Run("retries destroy once", func() {
		gomock.InOrder(
			s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").
				Return(fmt.Errorf("%w: blip", sentinel.ErrUnavailable)),
			s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").Return(nil),
		)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.NoError(s.service.Logout(s.ctxWithSession(s.activeSession())))
	})

	s.Run("fails when destroy cannot be confirmed", func() {
		s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").
			Return(fmt.Errorf("%w: down", sentinel.ErrUnavailable)).Times(2)

		err := s.service.Logout(s.ctxWithSession(s.activeSession()))
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Single Logout Tests
// =============================================================================

func (s *AuthServiceSuite) TestHandleSLOVerified() {
	responseURL, _ := url.Parse("https://idp.example.com/slo-response")

	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:    samlvalidator.StatusVerified,
			Profile:   &samlvalidator.Profile{NameID: "U1", SessionIndex: "S1"},
			RequestID: "id-42",
		})
	gomock.InOrder(
		s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").Return("sid-1", nil),
		s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").Return(nil),
		s.mockIndex.EXPECT().Delete(gomock.Any(), "slo:U1:::S1").Return(nil),
	)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, event audit.Event) error {
			s.Equal(string(audit.EventSLOCompleted), event.Action)
			s.Equal("sid-1", event.SessionID)
			return nil
		})
	s.mockSAML.EXPECT().LogoutResponseURL("id-42", "rs").Return(responseURL, nil)

	redirect, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.Require().NoError(err)
	s.Equal(responseURL, redirect)
}

func (s *AuthServiceSuite) TestHandleSLOMissingSessionIndex() {
	// An IdP that issues no SessionIndex still addresses the right session.
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:    samlvalidator.StatusVerified,
			Profile:   &samlvalidator.Profile{NameID: "U1"},
			RequestID: "id-42",
		})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::").Return("sid-1", nil)
	s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").Return(nil)
	s.mockIndex.EXPECT().Delete(gomock.Any(), "slo:U1:::").Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.mockSAML.EXPECT().LogoutResponseURL("id-42", "rs").Return(nil, nil)

	_, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.NoError(err)
}

func (s *AuthServiceSuite) TestHandleSLOUnknownIdentity() {
	// The session may have idled out before the IdP sent the logout; that is
	// a benign race, answered with success.
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:    samlvalidator.StatusVerified,
			Profile:   &samlvalidator.Profile{NameID: "U1", SessionIndex: "S1"},
			RequestID: "id-42",
		})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").Return("", sentinel.ErrNotFound)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, event audit.Event) error {
			s.Equal(string(audit.EventSLOUnknownSession), event.Action)
			return nil
		})
	s.mockSAML.EXPECT().LogoutResponseURL("id-42", "rs").Return(nil, nil)

	_, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.NoError(err)
}

func (s *AuthServiceSuite) TestHandleSLOFallbackToRequestingSession() {
	// A malformed logout request still terminates the session whose browser
	// delivered it.
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{Status: samlvalidator.StatusInvalid, Reason: "not xml"})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").Return("sid-1", nil)
	s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").Return(nil)
	s.mockIndex.EXPECT().Delete(gomock.Any(), "slo:U1:::S1").Return(nil)

	var actions []string
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ any, event audit.Event) error {
			actions = append(actions, event.Action)
			return nil
		})

	req := s.sloRequest().WithContext(s.ctxWithSession(s.activeSession()))
	redirect, err := s.service.HandleSLO(s.ctxWithSession(s.activeSession()), req)
	s.Require().NoError(err)
	s.Nil(redirect)
	s.Contains(actions, string(audit.EventSLOFallbackCleanup))
	s.Contains(actions, string(audit.EventSLOCompleted))
}

func (s *AuthServiceSuite) TestHandleSLONoMessageNoSession() {
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{Status: samlvalidator.StatusNotApplicable})

	redirect, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.NoError(err)
	s.Nil(redirect)
}

func (s *AuthServiceSuite) TestHandleSLOIndexUnavailable() {
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:  samlvalidator.StatusVerified,
			Profile: &samlvalidator.Profile{NameID: "U1", SessionIndex: "S1"},
		})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").
		Return("", fmt.Errorf("%w: down", sentinel.ErrUnavailable))

	_, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *AuthServiceSuite) TestHandleSLODestroyMustComplete() {
	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:    samlvalidator.StatusVerified,
			Profile:   &samlvalidator.Profile{NameID: "U1", SessionIndex: "S1"},
			RequestID: "id-42",
		})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").Return("sid-1", nil)
	s.mockSessions.EXPECT().Destroy(gomock.Any(), "sid-1").
		Return(fmt.Errorf("%w: down", sentinel.ErrUnavailable)).Times(2)

	_, err := s.service.HandleSLO(s.ctx(), s.sloRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *AuthServiceSuite) TestHandleSLOPostBindingRelayState() {
	form := url.Values{"SAMLRequest": {"x"}, "RelayState": {"rs-post"}}
	req := httptest.NewRequest(http.MethodPost, "/saml/slo", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	s.mockSAML.EXPECT().ValidateLogoutRequest(gomock.Any()).
		Return(samlvalidator.Result{
			Status:    samlvalidator.StatusVerified,
			Profile:   &samlvalidator.Profile{NameID: "U1", SessionIndex: "S1"},
			RequestID: "id-9",
		})
	s.mockIndex.EXPECT().Lookup(gomock.Any(), "slo:U1:::S1").Return("", sentinel.ErrNotFound)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.mockSAML.EXPECT().LogoutResponseURL("id-9", "rs-post").Return(nil, nil)

	_, err := s.service.HandleSLO(s.ctx(), req)
	s.NoError(err)
}
