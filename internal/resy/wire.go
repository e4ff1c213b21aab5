package resy

import (
	"bytes"
	"encoding/json"
	"strings"
)

// flexID accepts ids sent either as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type findResponse struct {
	Results struct {
		Venues []struct {
			Venue struct {
				ID struct {
					Resy flexID `json:"resy"`
				} `json:"id"`
				Name string `json:"name"`
			} `json:"venue"`
			Slots []wireSlot `json:"slots"`
		} `json:"venues"`
	} `json:"results"`
}

type wireSlot struct {
	Date struct {
		Start string `json:"start"`
	} `json:"date"`
	Config struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	} `json:"config"`
}

// startTime extracts "19:15:00" from "2022-05-09 19:15:00".
func (s wireSlot) startTime() string {
	pieces := strings.Fields(s.Date.Start)
	if len(pieces) < 2 {
		return ""
	}
	return pieces[1]
}

type reservationsResponse struct {
	Reservations []struct {
		Venue struct {
			ID flexID `json:"id"`
		} `json:"venue"`
		Day      string `json:"day"`
		TimeSlot string `json:"time_slot"`
		NumSeats int    `json:"num_seats"`
	} `json:"reservations"`
	Venues map[string]struct {
		Name string `json:"name"`
	} `json:"venues"`
}

type detailsRequest struct {
	Commit    int    `json:"commit"`
	ConfigID  string `json:"config_id"`
	Day       string `json:"day"`
	PartySize int    `json:"party_size"`
}

type detailsResponse struct {
	BookToken struct {
		Value string `json:"value"`
	} `json:"book_token"`
	User struct {
		PaymentMethods []struct {
			ID int64 `json:"id"`
		} `json:"payment_methods"`
	} `json:"user"`
}

type bookResponse struct {
	ResyToken     string `json:"resy_token"`
	ReservationID flexID `json:"reservation_id"`
}

type searchRequest struct {
	Geo struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geo"`
	Highlight struct {
		PreTag  string `json:"pre_tag"`
		PostTag string `json:"post_tag"`
	} `json:"highlight"`
	PerPage    int    `json:"per_page"`
	Query      string `json:"query"`
	SlotFilter struct {
		Day       string `json:"day"`
		PartySize int    `json:"party_size"`
	} `json:"slot_filter"`
	Types []string `json:"types"`
}

type searchResponse struct {
	Search struct {
		Hits []struct {
			ID struct {
				Resy flexID `json:"resy"`
			} `json:"id"`
			Name string `json:"name"`
		} `json:"hits"`
	} `json:"search"`
}
