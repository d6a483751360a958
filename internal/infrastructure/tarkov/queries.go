package tarkov

// itemsListQuery fetches every catalog entry with the fields used for matching
const itemsListQuery = `query ItemsList {
  items {
    id
    name
    shortName
    normalizedName
  }
}`

// itemDetailsQuery fetches the pricing fields of a single item
const itemDetailsQuery = `query ItemDetails($id: ID) {
  item(id: $id) {
    id
    basePrice
    lastLowPrice
    avg24hPrice
    link
    iconLink
    name
    sellFor {
      priceRUB
      vendor {
        name
        normalizedName
      }
    }
  }
}`
