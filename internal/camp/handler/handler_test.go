package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"redhope/internal/camp/handler/mocks"
	"redhope/internal/camp/models"
	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	bankID  id.BankID
	userID  id.UserID
	campID  id.CampID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.Register(s.router)
	s.bankID = id.NewBankID()
	s.userID = id.NewUserID()
	s.campID = id.NewCampID()
}

func (s *HandlerSuite) TestCreateCamp() {
	date := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	s.service.EXPECT().CreateCamp(gomock.Any(), s.bankID, models.CampInput{
		Name:     "Spring drive",
		Location: identity.Location{State: "Kerala", District: "Ernakulam", Address: "Town hall"},
		Date:     date,
	}).Return(&models.Camp{ID: s.campID, BankID: s.bankID, Name: "Spring drive", Date: date}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/camps", map[string]any{
		"name": " Spring drive ", "state": "Kerala", "district": "Ernakulam",
		"address": "Town hall", "date": "2026-05-14",
	})
	rr := testutil.DoRequest(s.router, testutil.AsBank(req, s.bankID))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "id", s.campID.String())
	s.NotContains(rr.Body.String(), "donors")
}

func (s *HandlerSuite) TestCreateCampRejectsBadDate() {
	s.service.EXPECT().CreateCamp(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/camps", map[string]any{
		"name": "Drive", "state": "Kerala", "district": "Ernakulam", "date": "next week",
	})
	rr := testutil.DoRequest(s.router, testutil.AsBank(req, s.bankID))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

func (s *HandlerSuite) TestUserCannotCreateCamp() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/camps", map[string]any{"name": "x"})
	rr := testutil.DoRequest(s.router, testutil.AsUser(req, s.userID))
	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
}

func (s *HandlerSuite) TestEnrollUsesPrincipalUser() {
	s.service.EXPECT().Enroll(gomock.Any(), s.campID, s.userID).Return(nil)

	req := testutil.NewRequest(s.T(), http.MethodPut, "/camps/"+s.campID.String())
	rr := testutil.DoRequest(s.router, testutil.AsUser(req, s.userID))
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *HandlerSuite) TestEnrollMalformedCampID() {
	req := testutil.NewRequest(s.T(), http.MethodPut, "/camps/not-a-uuid")
	rr := testutil.DoRequest(s.router, testutil.AsUser(req, s.userID))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *HandlerSuite) TestEnrollUnknownCampIs404() {
	s.service.EXPECT().Enroll(gomock.Any(), s.campID, s.userID).
		Return(dErrors.New(dErrors.CodeNotFound, "camp not found"))

	req := testutil.NewRequest(s.T(), http.MethodPut, "/camps/"+s.campID.String())
	rr := testutil.DoRequest(s.router, testutil.AsUser(req, s.userID))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *HandlerSuite) TestFulfill() {
	s.service.EXPECT().Fulfill(gomock.Any(), s.bankID, s.campID, s.userID, 3).Return(nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/camps/"+s.campID.String()+"/"+s.userID.String(),
		map[string]any{"units": 3})
	rr := testutil.DoRequest(s.router, testutil.AsBank(req, s.bankID))
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *HandlerSuite) TestFulfillForeignCampIs403() {
	s.service.EXPECT().Fulfill(gomock.Any(), s.bankID, s.campID, s.userID, 1).
		Return(dErrors.New(dErrors.CodeForbidden, "camp belongs to another bank"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/camps/"+s.campID.String()+"/"+s.userID.String(),
		map[string]any{"units": 1})
	rr := testutil.DoRequest(s.router, testutil.AsBank(req, s.bankID))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *HandlerSuite) TestFulfillRequiresUnits() {
	s.service.EXPECT().Fulfill(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	for _, units := range []int{0, id.MaxUnits + 1} {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/camps/"+s.campID.String()+"/"+s.userID.String(),
			map[string]any{"units": units})
		rr := testutil.DoRequest(s.router, testutil.AsBank(req, s.bankID))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	}
}

func (s *HandlerSuite) TestListByLocationForAnyRole() {
	s.service.EXPECT().ListByLocation(gomock.Any(), "Kerala", "Ernakulam").
		Return([]models.WithBank{{Summary: models.Summary{ID: s.campID}}}, nil).Times(2)

	for _, req := range []*http.Request{
		testutil.AsUser(testutil.NewRequest(s.T(), http.MethodGet, "/camps/Kerala/Ernakulam"), s.userID),
		testutil.AsBank(testutil.NewRequest(s.T(), http.MethodGet, "/camps/Kerala/Ernakulam"), s.bankID),
	} {
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
	}
}

func (s *HandlerSuite) TestListByDateIsPublic() {
	s.service.EXPECT().ListByLocationAndDate(gomock.Any(), "Kerala", "Ernakulam", "2026-05-14").
		Return([]models.WithBankName{{Summary: models.Summary{ID: s.campID}, BankName: "Lifeline"}}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/camps/all/Kerala/Ernakulam/2026-05-14"))

	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[[]map[string]any](s.T(), rr)
	s.Require().Len(*body, 1)
	s.Equal("Lifeline", (*body)[0]["bank_name"])
	s.NotContains((*body)[0], "donors")
}

func (s *HandlerSuite) TestListByBankShowsRoster() {
	s.service.EXPECT().ListByBank(gomock.Any(), s.bankID).Return([]models.WithRoster{{
		Summary: models.Summary{ID: s.campID, BankID: s.bankID},
		Donors: []models.RosterEntry{{
			Donor: models.Donor{UserID: s.userID, Status: models.DonorFulfilled, Units: 2},
			User:  &identity.UserProfile{ID: s.userID, Name: "Asha"},
		}},
	}}, nil)

	rr := testutil.DoRequest(s.router, testutil.AsBank(testutil.NewRequest(s.T(), http.MethodGet, "/camps"), s.bankID))

	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[[]struct {
		Donors []struct {
			UserID string         `json:"user_id"`
			Status int            `json:"status"`
			Units  int            `json:"units"`
			User   map[string]any `json:"user"`
		} `json:"donors"`
	}](s.T(), rr)
	s.Require().Len(*body, 1)
	s.Require().Len((*body)[0].Donors, 1)
	donor := (*body)[0].Donors[0]
	s.Equal(s.userID.String(), donor.UserID)
	s.Equal(2, donor.Units)
	s.Equal("Asha", donor.User["name"])
}

func (s *HandlerSuite) TestUnauthenticatedBankListingIs401() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/camps"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func TestHandleListByDateDirect(t *testing.T) {
	testutil.Given(t, "a handler whose store is down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockService(ctrl)
		h := New(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
		service.EXPECT().ListByLocationAndDate(gomock.Any(), "Goa", "North", "2026-01-01").
			Return(nil, dErrors.New(dErrors.CodeStorageFailure, "failed to list camps"))

		testutil.When(t, "the route params are supplied without a router", func(t *testing.T) {
			req := testutil.WithURLParams(
				testutil.NewRequest(t, http.MethodGet, "/camps/all/Goa/North/2026-01-01"),
				"state", "Goa", "district", "North", "date", "2026-01-01",
			)
			rr := httptest.NewRecorder()
			h.HandleListByDate(rr, req)

			testutil.Then(t, "the failure maps to 503", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, string(dErrors.CodeStorageFailure))
			})
		})
	})
}
