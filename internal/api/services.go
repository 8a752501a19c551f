package api

// Service accessors group Client methods by resource.

type SignatureRequestsService struct{ *Client }

type ReusableFormsService struct{ *Client }

type AccountService struct{ *Client }

type TeamService struct{ *Client }

type UnclaimedDraftsService struct{ *Client }

type EmbeddedService struct{ *Client }

func (c *Client) SignatureRequests() SignatureRequestsService {
	return SignatureRequestsService{c}
}

func (c *Client) ReusableForms() ReusableFormsService {
	return ReusableFormsService{c}
}

func (c *Client) Account() AccountService {
	return AccountService{c}
}

func (c *Client) Team() TeamService {
	return TeamService{c}
}

func (c *Client) UnclaimedDrafts() UnclaimedDraftsService {
	return UnclaimedDraftsService{c}
}

func (c *Client) Embedded() EmbeddedService {
	return EmbeddedService{c}
}
